package link

// State is the lifecycle state of a Link.
//
// Disconnected -> Connecting -> Connected -> Disconnected. A connect always
// passes through Connecting; Connected is only left by a disconnect.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "unknown"
}
