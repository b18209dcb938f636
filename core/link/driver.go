package link

import (
	"io"
	"time"
)

// Driver enumerates and opens the byte-stream ports a Link can attach to.
type Driver interface {
	ListPorts() ([]string, error)
	Open(name string, mode Mode) (Port, error)
}

// Port is an open byte stream. Read must return periodically, with (0, nil)
// when nothing arrived within Mode.ReadTimeout, so the read loop can notice
// a disconnect without device traffic. Close must unblock a pending Read.
type Port interface {
	io.ReadWriteCloser
}

type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	}
	return "unknown"
}

// Mode is the line configuration applied when a port is opened.
type Mode struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      Parity
	ReadTimeout time.Duration
}

// DefaultMode matches the trainer firmware: 115200 8N1 with a short
// semi-blocking read.
var DefaultMode = Mode{
	BaudRate:    115200,
	DataBits:    8,
	StopBits:    1,
	Parity:      ParityNone,
	ReadTimeout: 100 * time.Millisecond,
}
