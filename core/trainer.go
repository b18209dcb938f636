// Package trainer ties the serial link to the sidetone engine: it consumes
// the link's event stream, keys the sidetone for every transmitted character
// and fans events out to the UI.
package trainer

import (
	"context"
	"fmt"
	"sync/atomic"
	"unicode"

	"github.com/koscakluka/morse-client/core/events"
	"github.com/koscakluka/morse-client/core/protocol"
	"github.com/koscakluka/morse-client/core/session"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Link interface {
	Events() <-chan events.Event
	Send(b byte)
	SendCommand(cmd string)
}

type Tone interface {
	Play(pattern string, wpm int)
}

type Trainer struct {
	link Link
	tone Tone
	log  *session.Log

	callbacks callbacks
	emit      eventEmitter

	wpm       atomic.Int32
	running   atomic.Bool
	connected atomic.Bool
}

func New(link Link, tone Tone, opts ...Option) *Trainer {
	t := &Trainer{
		link: link,
		tone: tone,
	}

	for _, opt := range opts {
		opt(t)
	}
	t.emit = newCallbackEventEmitter(t.callbacks)

	return t
}

// Run dispatches link events in order until ctx is done or the link's event
// stream is closed. It must not be called concurrently.
func (t *Trainer) Run(ctx context.Context) error {
	stream := t.link.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-stream:
			if !ok {
				return nil
			}
			t.dispatch(ctx, event)
		}
	}
}

func (t *Trainer) dispatch(ctx context.Context, event events.Event) {
	_, span := tracer.Start(ctx, "trainer.dispatch", trace.WithAttributes(
		attribute.String("event.kind", string(event.Kind())),
	))
	defer span.End()

	switch e := event.(type) {
	case events.Speed:
		t.wpm.Store(int32(e.WPM))

	case events.Tx:
		if wpm := t.WPM(); wpm > 0 && t.tone != nil {
			t.tone.Play(e.Pattern, wpm)
		}

	case events.Result:
		if t.log != nil {
			t.log.Record(e.Expected, e.Typed, e.Correct, t.WPM(), e.Prob)
		}

	case events.SessionState:
		wasRunning := t.running.Swap(e.Running)
		if e.Running && !wasRunning && t.log != nil {
			t.log.Start()
		}

	case events.ContextLost:
		logger.InfoContext(ctx, "device lost context, resynchronizing")

	case events.ConnectionChanged:
		t.connected.Store(e.Connected)
		if !e.Connected {
			t.running.Store(false)
		}
	}

	t.emit(event)
}

// WPM returns the last speed the device reported, or 0 before any report.
func (t *Trainer) WPM() int {
	return int(t.wpm.Load())
}

func (t *Trainer) Running() bool {
	return t.running.Load()
}

func (t *Trainer) Connected() bool {
	return t.connected.Load()
}

func (t *Trainer) Start() {
	t.link.SendCommand(protocol.CommandStart)
}

func (t *Trainer) Stop() {
	t.link.SendCommand(protocol.CommandStop)
}

func (t *Trainer) Status() {
	t.link.SendCommand(protocol.CommandStatus)
}

func (t *Trainer) Probabilities() {
	t.link.SendCommand(protocol.CommandProbs)
}

// SetSpeed asks the device to change speed.
func (t *Trainer) SetSpeed(wpm int) error {
	if wpm < protocol.MinSpeed || wpm > protocol.MaxSpeed {
		return fmt.Errorf("speed %d out of range %d-%d", wpm, protocol.MinSpeed, protocol.MaxSpeed)
	}
	t.link.SendCommand(protocol.FormatCommand(protocol.CommandSpeed, wpm))
	return nil
}

// SetProfile asks the device to switch training profile.
func (t *Trainer) SetProfile(profile int) error {
	if profile < protocol.MinProfile || profile > protocol.MaxProfile {
		return fmt.Errorf("profile %d out of range %d-%d", profile, protocol.MinProfile, protocol.MaxProfile)
	}
	t.link.SendCommand(protocol.FormatCommand(protocol.CommandProfile, profile))
	return nil
}

// Key forwards a typed character. Only printable ASCII is sent.
func (t *Trainer) Key(r rune) {
	if r > unicode.MaxASCII || !unicode.IsPrint(r) {
		return
	}
	t.link.Send(byte(r))
}

func (t *Trainer) Enter() {
	t.link.Send(protocol.Enter)
}
