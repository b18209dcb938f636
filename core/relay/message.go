package relay

import (
	"github.com/koscakluka/morse-client/core/events"
)

// Message types sent to browsers.
const (
	TypeCharSent    = "char_sent"
	TypeResult      = "result"
	TypeSpeedChange = "speed_change"
	TypeSession     = "session"
	TypeContextLost = "context_lost"
	TypeConnection  = "connection"
)

// Message types accepted from browsers.
const (
	TypeKey     = "key"
	TypeCommand = "command"
)

// Message is the JSON envelope exchanged over /ws. Which fields are set
// depends on Type.
type Message struct {
	Type string `json:"type" jsonschema:"enum=char_sent,enum=result,enum=speed_change,enum=session,enum=context_lost,enum=connection,enum=key,enum=command"`

	Char      string `json:"char,omitempty" jsonschema:"maxLength=1"`
	Pattern   string `json:"pattern,omitempty" jsonschema:"pattern=^[.-]*$"`
	QueueDist *int   `json:"queue_dist,omitempty"`

	Correct  *bool  `json:"correct,omitempty"`
	Typed    string `json:"typed,omitempty"`
	Expected string `json:"expected,omitempty"`
	Prob     *int   `json:"prob,omitempty" jsonschema:"minimum=0,maximum=100"`

	Speed     *int   `json:"speed,omitempty"`
	Direction string `json:"direction,omitempty" jsonschema:"enum=up,enum=down"`
	State     string `json:"state,omitempty" jsonschema:"enum=started,enum=stopped"`

	Connected *bool  `json:"connected,omitempty"`
	Port      string `json:"port,omitempty"`

	Cmd     string `json:"cmd,omitempty" jsonschema:"enum=start,enum=stop,enum=speed,enum=status,enum=probs"`
	Profile *int   `json:"profile,omitempty"`
}

func ptr[T any](v T) *T {
	return &v
}

// messageFor converts event into its browser message. speed is the last
// known trainer speed, reported alongside session and context lost messages.
func messageFor(event events.Event, speed int) (Message, bool) {
	switch e := event.(type) {
	case events.Tx:
		return Message{Type: TypeCharSent, Char: string(e.Char), Pattern: e.Pattern, QueueDist: ptr(e.Distance)}, true
	case events.Result:
		return Message{
			Type:     TypeResult,
			Correct:  ptr(e.Correct),
			Typed:    string(e.Typed),
			Expected: string(e.Expected),
			Prob:     ptr(e.Prob),
		}, true
	case events.Speed:
		return Message{Type: TypeSpeedChange, Speed: ptr(e.WPM), Direction: string(e.Direction)}, true
	case events.SessionState:
		state := "stopped"
		if e.Running {
			state = "started"
		}
		return Message{Type: TypeSession, State: state, Speed: ptr(speed)}, true
	case events.ContextLost:
		return Message{Type: TypeContextLost, Speed: ptr(speed)}, true
	case events.ConnectionChanged:
		return Message{Type: TypeConnection, Connected: ptr(e.Connected), Port: e.Port}, true
	}
	return Message{}, false
}
