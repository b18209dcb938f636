// Package link owns the serial connection to the trainer: its lifecycle, the
// line read loop and the host-to-device command path.
//
// Everything the device says is delivered, in order, on a single event
// stream (see Events). Link failures never surface as errors to the
// consumer; they surface as events.ConnectionChanged{Connected: false}.
package link

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/morse-client/core/events"
	"github.com/koscakluka/morse-client/core/protocol"
	"github.com/koscakluka/morse-client/internal/queue"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultEventBuffer = 64

	// closeDrainTimeout bounds how long Close keeps delivering events that
	// were queued before it, such as the final ConnectionChanged{false}.
	closeDrainTimeout = time.Second
)

type Link struct {
	driver      Driver
	mode        Mode
	eventBuffer int

	// connectMu serializes Connect calls; mu guards state and conn.
	connectMu sync.Mutex
	mu        sync.Mutex
	state     State
	conn      *connection

	events    *queue.Queue[events.Event]
	out       chan events.Event
	closeCh   chan struct{}
	closeOnce sync.Once
}

// connection is one open port and the read loop attached to it. Events are
// only accepted from the connection that is current, which is what keeps a
// torn-down read loop from emitting after its ConnectionChanged{false}.
type connection struct {
	id     string
	port   string
	handle Port

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	span   trace.Span

	writeMu sync.Mutex
}

func New(driver Driver, opts ...Option) *Link {
	l := &Link{
		driver:      driver,
		mode:        DefaultMode,
		eventBuffer: defaultEventBuffer,
		state:       Disconnected,
		out:         make(chan events.Event),
		closeCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(l)
	}

	l.events = queue.New[events.Event](l.eventBuffer)
	go l.pump()

	return l
}

// Events returns the ordered stream of everything the link reports. The
// channel is closed by Close.
func (l *Link) Events() <-chan events.Event {
	return l.out
}

func (l *Link) ListPorts() ([]string, error) {
	return l.driver.ListPorts()
}

// Connect closes any existing connection, opens portID with DefaultMode and
// starts reading. On success it emits ConnectionChanged{true} and asks the
// device for its status so run state and speed resynchronize. On failure it
// returns an *OpenError, leaves the link disconnected and emits nothing.
func (l *Link) Connect(ctx context.Context, portID string) error {
	l.connectMu.Lock()
	defer l.connectMu.Unlock()

	l.Disconnect()

	ctx, span := tracer.Start(ctx, "link.connect", trace.WithAttributes(attribute.String("link.port", portID)))
	defer span.End()

	l.setState(Connecting)

	handle, err := l.open(ctx, portID)
	if err != nil {
		l.setState(Disconnected)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnContext(ctx, "failed to connect", "port", portID, "error", err)
		return err
	}

	connCtx, cancel := context.WithCancel(context.Background())
	conn := &connection{
		id:     uuid.NewString(),
		port:   portID,
		handle: handle,
		ctx:    connCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	_, conn.span = tracer.Start(connCtx, "link.session", trace.WithAttributes(
		attribute.String("link.port", portID),
		attribute.String("link.id", conn.id),
	))
	span.SetAttributes(attribute.String("link.id", conn.id))

	l.mu.Lock()
	l.conn = conn
	l.state = Connected
	l.events.Push(events.NewConnectionChanged(true, conn.port, conn.id))
	l.mu.Unlock()

	go l.readLoop(conn)
	logger.InfoContext(ctx, "connected", "port", portID, "link_id", conn.id)

	l.SendCommand(protocol.CommandStatus)
	return nil
}

func (l *Link) open(ctx context.Context, portID string) (Port, error) {
	if err := ctx.Err(); err != nil {
		return nil, &OpenError{Port: portID, Err: err}
	}

	ports, err := l.driver.ListPorts()
	if err != nil {
		return nil, &OpenError{Port: portID, Err: err}
	}
	if !slices.Contains(ports, portID) {
		return nil, &OpenError{Port: portID, Err: ErrPortNotFound}
	}

	handle, err := l.driver.Open(portID, l.mode)
	if err != nil {
		return nil, &OpenError{Port: portID, Err: err}
	}
	return handle, nil
}

// Disconnect stops the read loop, closes the port and emits
// ConnectionChanged{false}. It does nothing when already disconnected.
func (l *Link) Disconnect() {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()

	if conn == nil {
		return
	}
	l.teardown(conn, nil, true)
}

func (l *Link) IsConnected() bool {
	return l.State() == Connected
}

func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Port returns the name of the connected port, or "" when disconnected.
func (l *Link) Port() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return ""
	}
	return l.conn.port
}

// Send writes a single byte, typically a live keystroke. It is a no-op while
// disconnected.
func (l *Link) Send(b byte) {
	l.write([]byte{b})
}

// SendCommand writes cmd followed by a newline. It is a no-op while
// disconnected.
func (l *Link) SendCommand(cmd string) {
	l.write(protocol.Line(cmd))
}

func (l *Link) write(p []byte) {
	conn := l.current()
	if conn == nil {
		return
	}

	conn.writeMu.Lock()
	_, err := conn.handle.Write(p)
	conn.writeMu.Unlock()

	if err != nil {
		l.fail(conn, &IOError{Op: "write", Port: conn.port, Err: err})
	}
}

// Close disconnects and closes the event stream. Events queued before Close,
// including the final ConnectionChanged{false}, are still delivered for up to
// closeDrainTimeout. The Link cannot be reused.
func (l *Link) Close() {
	l.Disconnect()
	l.closeOnce.Do(func() {
		l.events.Finish()
		close(l.closeCh)
	})
}

func (l *Link) current() *connection {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn
}

func (l *Link) setState(state State) {
	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
}

// emit queues event if conn is still the current connection.
func (l *Link) emit(conn *connection, event events.Event) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != conn {
		return false
	}
	l.events.Push(event)
	return true
}

// fail tears conn down after an I/O failure. It may run on the read loop, so
// it does not wait for the loop to exit.
func (l *Link) fail(conn *connection, err error) {
	logger.WarnContext(conn.ctx, "link failed", "port", conn.port, "link_id", conn.id, "error", err)
	l.teardown(conn, err, false)
}

func (l *Link) teardown(conn *connection, cause error, wait bool) {
	l.mu.Lock()
	if l.conn != conn {
		l.mu.Unlock()
		return
	}
	l.conn = nil
	l.state = Disconnected
	l.events.Push(events.NewConnectionChanged(false, conn.port, conn.id))
	l.mu.Unlock()

	conn.cancel()
	if err := conn.handle.Close(); err != nil {
		logger.Debug("failed to close port", "port", conn.port, "error", err)
	}
	if wait {
		<-conn.done
	}

	if cause != nil {
		conn.span.RecordError(cause)
		conn.span.SetStatus(codes.Error, cause.Error())
	}
	conn.span.End()
}

func (l *Link) pump() {
	defer close(l.out)

	var deadline <-chan time.Time
	for {
		event, err := l.events.Pop(context.Background())
		if err != nil {
			return
		}

		select {
		case l.out <- event:
			continue
		case <-l.closeCh:
		}

		if deadline == nil {
			deadline = time.After(closeDrainTimeout)
		}
		select {
		case l.out <- event:
		case <-deadline:
			return
		}
	}
}
