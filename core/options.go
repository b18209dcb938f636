package trainer

import (
	"github.com/koscakluka/morse-client/core/events"
	"github.com/koscakluka/morse-client/core/session"
)

type Option func(*Trainer)

type callbacks struct {
	onTx          func(events.Tx)
	onResult      func(events.Result)
	onSpeed       func(events.Speed)
	onSession     func(running bool)
	onContextLost func()
	onRawLine     func(line string)
	onConnection  func(events.ConnectionChanged)
	onEvent       func(events.Event)
}

func WithTxCallback(callback func(events.Tx)) Option {
	return func(t *Trainer) { t.callbacks.onTx = callback }
}

func WithResultCallback(callback func(events.Result)) Option {
	return func(t *Trainer) { t.callbacks.onResult = callback }
}

func WithSpeedCallback(callback func(events.Speed)) Option {
	return func(t *Trainer) { t.callbacks.onSpeed = callback }
}

func WithSessionCallback(callback func(running bool)) Option {
	return func(t *Trainer) { t.callbacks.onSession = callback }
}

func WithContextLostCallback(callback func()) Option {
	return func(t *Trainer) { t.callbacks.onContextLost = callback }
}

// WithRawLineCallback receives every line the device sends, recognized or
// not.
func WithRawLineCallback(callback func(line string)) Option {
	return func(t *Trainer) { t.callbacks.onRawLine = callback }
}

func WithConnectionCallback(callback func(events.ConnectionChanged)) Option {
	return func(t *Trainer) { t.callbacks.onConnection = callback }
}

// WithEventCallback receives every event after the typed callback for it.
func WithEventCallback(callback func(events.Event)) Option {
	return func(t *Trainer) { t.callbacks.onEvent = callback }
}

// WithSessionLog records results into log and restarts it whenever a session
// starts.
func WithSessionLog(log *session.Log) Option {
	return func(t *Trainer) { t.log = log }
}
