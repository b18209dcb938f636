package link

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/koscakluka/morse-client/core/events"
	"github.com/koscakluka/morse-client/core/protocol"
)

// readLoop reads lines until the connection is torn down, the stream ends
// or a read fails. Any failure other than a deliberate teardown disconnects.
func (l *Link) readLoop(conn *connection) {
	defer close(conn.done)
	defer func() {
		if r := recover(); r != nil {
			l.fail(conn, &IOError{Op: "read", Port: conn.port, Err: fmt.Errorf("panic in read loop: %v", r)})
		}
	}()

	reader := newLineReader(conn.handle)
	for {
		line, err := reader.ReadLine(conn.ctx)
		if err != nil {
			if conn.ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("end of stream: %w", err)
			}
			l.fail(conn, &IOError{Op: "read", Port: conn.port, Err: err})
			return
		}

		if !l.handleLine(conn, line) {
			return
		}
	}
}

// handleLine forwards one line as RawLine and, when the grammar recognizes
// it, as its typed event. It reports false once conn is no longer current.
func (l *Link) handleLine(conn *connection, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	linesReadCounter.Add(conn.ctx, 1)

	if !l.emit(conn, events.NewRawLine(line)) {
		return false
	}

	event, ok := protocol.Parse(line)
	if !ok {
		malformedLinesCounter.Add(conn.ctx, 1)
		logger.DebugContext(conn.ctx, "dropped malformed line", "line", line)
		return true
	}
	if _, isRaw := event.(events.RawLine); isRaw {
		return true
	}

	return l.emit(conn, event)
}
