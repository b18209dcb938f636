package link

import (
	"bytes"
	"context"
	"io"
)

const (
	readChunkSize = 256
	// maxLineLength bounds a line that never sees a terminator.
	maxLineLength = 4096
)

// lineReader splits a semi-blocking byte stream into '\n' terminated lines.
// Unlike bufio.Reader it tolerates any number of empty reads, which is how
// a port reports that its read timeout expired.
type lineReader struct {
	r     io.Reader
	buf   []byte
	chunk []byte
	err   error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: r, chunk: make([]byte, readChunkSize)}
}

// ReadLine returns the next line without its terminator. At end of stream a
// trailing unterminated line is returned first, then the stream error.
func (lr *lineReader) ReadLine(ctx context.Context) (string, error) {
	for {
		if i := bytes.IndexByte(lr.buf, '\n'); i >= 0 {
			return lr.take(i, i+1), nil
		}
		if len(lr.buf) >= maxLineLength {
			return lr.take(len(lr.buf), len(lr.buf)), nil
		}
		if lr.err != nil {
			if len(lr.buf) > 0 {
				return lr.take(len(lr.buf), len(lr.buf)), nil
			}
			return "", lr.err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := lr.r.Read(lr.chunk)
		lr.buf = append(lr.buf, lr.chunk[:n]...)
		if err != nil {
			lr.err = err
		}
	}
}

func (lr *lineReader) take(end, consumed int) string {
	line := string(lr.buf[:end])
	remaining := copy(lr.buf, lr.buf[consumed:])
	lr.buf = lr.buf[:remaining]
	return line
}
