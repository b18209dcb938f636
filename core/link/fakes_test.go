package link

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/morse-client/core/events"
)

type fakeDriver struct {
	mu      sync.Mutex
	ports   []string
	openErr error
	opened  []*fakePort
	modes   []Mode
}

func newFakeDriver(ports ...string) *fakeDriver {
	return &fakeDriver{ports: ports}
}

func (d *fakeDriver) ListPorts() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ports...), nil
}

func (d *fakeDriver) Open(name string, mode Mode) (Port, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	port := newFakePort()
	d.opened = append(d.opened, port)
	d.modes = append(d.modes, mode)
	return port, nil
}

func (d *fakeDriver) lastPort(t *testing.T) *fakePort {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.opened) == 0 {
		t.Fatalf("expected a port to have been opened")
	}
	return d.opened[len(d.opened)-1]
}

// fakePort feeds device output through a pipe and records host writes.
type fakePort struct {
	reader *io.PipeReader
	writer *io.PipeWriter

	mu         sync.Mutex
	written    bytes.Buffer
	writeErr   error
	closeCount int
}

func newFakePort() *fakePort {
	reader, writer := io.Pipe()
	return &fakePort{reader: reader, writer: writer}
}

func (p *fakePort) Read(b []byte) (int, error) {
	return p.reader.Read(b)
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	p.closeCount++
	p.mu.Unlock()
	return p.reader.Close()
}

// deviceSays writes lines as the device would. It returns once the read
// loop has consumed them or the port has been closed.
func (p *fakePort) deviceSays(lines string) {
	_, _ = p.writer.Write([]byte(lines))
}

func (p *fakePort) hangUp() {
	_ = p.writer.Close()
}

func (p *fakePort) failWrites() {
	p.mu.Lock()
	p.writeErr = errors.New("device unplugged")
	p.mu.Unlock()
}

func (p *fakePort) writtenString() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

func (p *fakePort) closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCount
}

func nextEvent(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatalf("expected an event, event stream closed")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("expected an event, got none")
	}
	return nil
}

func expectNoEvent(t *testing.T, ch <-chan events.Event) {
	t.Helper()
	select {
	case event, ok := <-ch:
		if ok {
			t.Fatalf("expected no event, got %s", event.Kind())
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func expectConnectionChanged(t *testing.T, ch <-chan events.Event, connected bool) events.ConnectionChanged {
	t.Helper()
	event := nextEvent(t, ch)
	changed, ok := event.(events.ConnectionChanged)
	if !ok {
		t.Fatalf("expected events.ConnectionChanged, got %T", event)
	}
	if changed.Connected != connected {
		t.Fatalf("expected connected %t, got %t", connected, changed.Connected)
	}
	return changed
}
