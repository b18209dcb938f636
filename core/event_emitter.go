package trainer

import "github.com/koscakluka/morse-client/core/events"

type eventEmitter func(events.Event)

func newCallbackEventEmitter(cb callbacks) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.Tx:
			if cb.onTx != nil {
				cb.onTx(typedEvent)
			}
		case events.Result:
			if cb.onResult != nil {
				cb.onResult(typedEvent)
			}
		case events.Speed:
			if cb.onSpeed != nil {
				cb.onSpeed(typedEvent)
			}
		case events.SessionState:
			if cb.onSession != nil {
				cb.onSession(typedEvent.Running)
			}
		case events.ContextLost:
			if cb.onContextLost != nil {
				cb.onContextLost()
			}
		case events.RawLine:
			if cb.onRawLine != nil {
				cb.onRawLine(typedEvent.Text)
			}
		case events.ConnectionChanged:
			if cb.onConnection != nil {
				cb.onConnection(typedEvent)
			}
		}

		if cb.onEvent != nil {
			cb.onEvent(event)
		}
	}
}
