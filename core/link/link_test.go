package link

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/koscakluka/morse-client/core/events"
)

func TestConnectToUnknownPortFailsWithoutNotification(t *testing.T) {
	l := New(newFakeDriver("ttyUSB0"))
	defer l.Close()

	err := l.Connect(context.Background(), "ttyACM9")
	if err == nil {
		t.Fatalf("expected connect to fail")
	}
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("expected *OpenError, got %T", err)
	}
	if !errors.Is(err, ErrPortNotFound) {
		t.Fatalf("expected ErrPortNotFound, got %v", err)
	}
	if l.State() != Disconnected {
		t.Fatalf("expected state disconnected, got %s", l.State())
	}
	expectNoEvent(t, l.Events())
}

func TestConnectOpenFailureLeavesLinkDisconnected(t *testing.T) {
	driver := newFakeDriver("ttyUSB0")
	driver.openErr = errors.New("permission denied")
	l := New(driver)
	defer l.Close()

	if err := l.Connect(context.Background(), "ttyUSB0"); err == nil {
		t.Fatalf("expected connect to fail")
	}
	if l.IsConnected() {
		t.Fatalf("expected link to be disconnected")
	}
	expectNoEvent(t, l.Events())
}

func TestConnectNotifiesAndRequestsStatus(t *testing.T) {
	driver := newFakeDriver("ttyUSB0")
	l := New(driver)
	defer l.Close()

	if err := l.Connect(context.Background(), "ttyUSB0"); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}

	changed := expectConnectionChanged(t, l.Events(), true)
	if changed.Port != "ttyUSB0" || changed.LinkID == "" {
		t.Fatalf("expected port and link id on the event, got %q %q", changed.Port, changed.LinkID)
	}
	if !l.IsConnected() || l.Port() != "ttyUSB0" {
		t.Fatalf("expected link to be connected to ttyUSB0")
	}

	port := driver.lastPort(t)
	if got := port.writtenString(); got != "/status\n" {
		t.Fatalf("expected status request to be sent, got %q", got)
	}

	if got := driver.modes[0]; got != DefaultMode {
		t.Fatalf("expected default mode, got %+v", got)
	}
}

func TestReadLoopEmitsRawAndTypedEventsInOrder(t *testing.T) {
	driver := newFakeDriver("ttyUSB0")
	l := New(driver)
	defer l.Close()

	if err := l.Connect(context.Background(), "ttyUSB0"); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	expectConnectionChanged(t, l.Events(), true)

	port := driver.lastPort(t)
	port.deviceSays("[TX] A (.-) dist=5\r\n\r\nhello\n[TX] A (.-) dist=xyz\n[OK] A prob=9\n")

	expected := []events.Kind{
		events.KindRawLine, events.KindTx,
		events.KindRawLine,
		events.KindRawLine,
		events.KindRawLine, events.KindResult,
	}
	for i, kind := range expected {
		event := nextEvent(t, l.Events())
		if event.Kind() != kind {
			t.Fatalf("expected event %d to be %q, got %q", i, kind, event.Kind())
		}
		if i == 0 {
			if raw := event.(events.RawLine); raw.Text != "[TX] A (.-) dist=5" {
				t.Fatalf("expected trimmed raw line, got %q", raw.Text)
			}
		}
	}

	port.deviceSays("Running: yes\n")
	nextEvent(t, l.Events())
	if state, ok := nextEvent(t, l.Events()).(events.SessionState); !ok || !state.Running {
		t.Fatalf("expected read loop to continue after a malformed line")
	}
}

func TestDisconnectTwiceNotifiesOnce(t *testing.T) {
	driver := newFakeDriver("ttyUSB0")
	l := New(driver)
	defer l.Close()

	if err := l.Connect(context.Background(), "ttyUSB0"); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	expectConnectionChanged(t, l.Events(), true)

	l.Disconnect()
	l.Disconnect()

	expectConnectionChanged(t, l.Events(), false)
	expectNoEvent(t, l.Events())

	if got := driver.lastPort(t).closes(); got != 1 {
		t.Fatalf("expected port to be closed once, got %d", got)
	}
}

func TestEndOfStreamDisconnects(t *testing.T) {
	driver := newFakeDriver("ttyUSB0")
	l := New(driver)
	defer l.Close()

	if err := l.Connect(context.Background(), "ttyUSB0"); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	expectConnectionChanged(t, l.Events(), true)

	driver.lastPort(t).hangUp()

	expectConnectionChanged(t, l.Events(), false)
	if l.IsConnected() {
		t.Fatalf("expected link to be disconnected after end of stream")
	}

	l.Disconnect()
	expectNoEvent(t, l.Events())
}

func TestWriteFailureDisconnects(t *testing.T) {
	driver := newFakeDriver("ttyUSB0")
	l := New(driver)
	defer l.Close()

	if err := l.Connect(context.Background(), "ttyUSB0"); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	expectConnectionChanged(t, l.Events(), true)

	driver.lastPort(t).failWrites()
	l.Send('K')

	expectConnectionChanged(t, l.Events(), false)
	if l.State() != Disconnected {
		t.Fatalf("expected state disconnected, got %s", l.State())
	}
}

func TestSendWhileDisconnectedIsNoop(t *testing.T) {
	l := New(newFakeDriver())
	defer l.Close()

	l.Send('A')
	l.SendCommand("/start")

	expectNoEvent(t, l.Events())
}

func TestSendWritesKeystrokesAndCommands(t *testing.T) {
	driver := newFakeDriver("ttyUSB0")
	l := New(driver)
	defer l.Close()

	if err := l.Connect(context.Background(), "ttyUSB0"); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}

	l.Send('E')
	l.Send('\n')
	l.SendCommand("/start")

	if got := driver.lastPort(t).writtenString(); got != "/status\nE\n/start\n" {
		t.Fatalf("expected keystrokes and commands in order, got %q", got)
	}
}

func TestReconnectClosesPreviousConnection(t *testing.T) {
	driver := newFakeDriver("ttyUSB0", "ttyUSB1")
	l := New(driver)
	defer l.Close()

	if err := l.Connect(context.Background(), "ttyUSB0"); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	first := expectConnectionChanged(t, l.Events(), true)
	firstPort := driver.lastPort(t)

	if err := l.Connect(context.Background(), "ttyUSB1"); err != nil {
		t.Fatalf("expected reconnect to succeed, got %v", err)
	}

	closed := expectConnectionChanged(t, l.Events(), false)
	if closed.LinkID != first.LinkID {
		t.Fatalf("expected the first connection to be closed")
	}
	second := expectConnectionChanged(t, l.Events(), true)
	if second.LinkID == first.LinkID || second.Port != "ttyUSB1" {
		t.Fatalf("expected a new connection on ttyUSB1, got %+v", second)
	}

	// Lines from the old port must not leak into the new connection.
	go firstPort.deviceSays("[OK] A prob=1\n")
	expectNoEvent(t, l.Events())
}

func TestCloseEndsEventStream(t *testing.T) {
	l := New(newFakeDriver())
	l.Close()

	select {
	case _, ok := <-l.Events():
		if ok {
			t.Fatalf("expected event stream to be closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("expected event stream to close")
	}
}

func TestCloseDeliversFinalDisconnect(t *testing.T) {
	l := New(newFakeDriver("ttyUSB0"))

	if err := l.Connect(context.Background(), "ttyUSB0"); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	expectConnectionChanged(t, l.Events(), true)

	l.Close()

	changed := expectConnectionChanged(t, l.Events(), false)
	if changed.Port != "ttyUSB0" {
		t.Fatalf("expected disconnect from ttyUSB0, got %q", changed.Port)
	}

	select {
	case event, ok := <-l.Events():
		if ok {
			t.Fatalf("expected event stream to close after the disconnect, got %T", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected event stream to close")
	}
}
