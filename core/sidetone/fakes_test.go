package sidetone

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koscakluka/morse-client/core/audio"
)

type recordingSink struct {
	mu     sync.Mutex
	writes [][]byte
	marks  []int // len(writes) at each Drain

	drained chan struct{}
	closes  atomic.Int32
}

func newRecordingSink() *recordingSink {
	return &recordingSink{drained: make(chan struct{}, 64)}
}

func (s *recordingSink) opener() audio.Opener {
	return func(audio.EncodingInfo) (audio.Sink, error) { return s, nil }
}

func (s *recordingSink) Write(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, append([]byte(nil), pcm...))
	return nil
}

func (s *recordingSink) Drain() error {
	s.mu.Lock()
	s.marks = append(s.marks, len(s.writes))
	s.mu.Unlock()

	s.drained <- struct{}{}
	return nil
}

func (s *recordingSink) Close() error {
	s.closes.Add(1)
	return nil
}

// writeSizes returns the size in samples of every write so far.
func (s *recordingSink) writeSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sizes := make([]int, len(s.writes))
	for i, w := range s.writes {
		sizes[i] = len(w) / 2
	}
	return sizes
}

func (s *recordingSink) drainMarks() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.marks...)
}

func awaitDrains(t *testing.T, s *recordingSink, n int) {
	t.Helper()
	for i := range n {
		select {
		case <-s.drained:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d drains, got %d", n, i)
		}
	}
}
