package link

import (
	"errors"
	"fmt"
)

// ErrPortNotFound indicates the requested port is not among the enumerated
// ports.
var ErrPortNotFound = errors.New("port not found")

// OpenError reports a failed connect. The link stays disconnected.
type OpenError struct {
	Port string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open %s: %v", e.Port, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// IOError reports a read or write failure on an open link. It is never
// returned to callers; the link tears itself down instead.
type IOError struct {
	Op   string
	Port string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
