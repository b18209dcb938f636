package events

const (
	// KindRawLine identifies a line received from the device.
	KindRawLine Kind = "link.raw_line"
	// KindConnectionChanged identifies a link lifecycle change.
	KindConnectionChanged Kind = "link.connection_changed"
)

// RawLine carries a trimmed, non-empty line as received.
type RawLine struct {
	Base
	Text string
}

// NewRawLine creates a raw line event.
func NewRawLine(text string) RawLine {
	return RawLine{Base: NewBase(KindRawLine), Text: text}
}

// ConnectionChanged marks the link opening or closing. Port and LinkID
// identify the connection the change belongs to.
type ConnectionChanged struct {
	Base
	Connected bool
	Port      string
	LinkID    string
}

// NewConnectionChanged creates a connection changed event.
func NewConnectionChanged(connected bool, port, linkID string) ConnectionChanged {
	return ConnectionChanged{Base: NewBase(KindConnectionChanged), Connected: connected, Port: port, LinkID: linkID}
}
