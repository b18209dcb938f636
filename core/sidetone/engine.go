// Package sidetone renders Morse patterns as audible tone on the host.
//
// Requests are queued by Play and rendered one at a time, in order, on a
// single goroutine that owns the oscillator. Pitch and spacing may be changed
// from any goroutine and take effect at the next burst or gap.
package sidetone

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/koscakluka/morse-client/core/audio"
	"github.com/koscakluka/morse-client/internal/queue"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultFrequency = 700
	DefaultSpacing   = 100

	// unitNumerator gives the dot length in ms for a given WPM (PARIS timing).
	unitNumerator = 1200

	requestQueueCapacity = 16
)

// ErrAudioUnavailable is returned by NewEngine when the audio sink could not
// be opened. The returned engine is still usable but never produces sound.
var ErrAudioUnavailable = errors.New("audio device unavailable")

type Engine struct {
	info audio.EncodingInfo
	sink audio.Sink

	frequency atomic.Int32
	spacing   atomic.Int32

	requests *queue.Queue[request]
	cancel   context.CancelFunc
	done     chan struct{}

	disabled     bool
	shutdownOnce sync.Once
}

type request struct {
	pattern  string
	wpm      int
	queuedAt time.Time
}

// NewEngine opens a sink through open and starts the render goroutine.
func NewEngine(open audio.Opener, opts ...Option) (*Engine, error) {
	e := &Engine{
		info:     audio.SidetoneEncoding,
		requests: queue.New[request](requestQueueCapacity),
		done:     make(chan struct{}),
	}
	e.frequency.Store(DefaultFrequency)
	e.spacing.Store(DefaultSpacing)

	for _, opt := range opts {
		opt(e)
	}

	if open == nil {
		return e.disable(errors.New("no audio backend"))
	}
	sink, err := open(e.info)
	if err != nil {
		return e.disable(err)
	}
	e.sink = sink

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go e.run(ctx)

	return e, nil
}

func (e *Engine) disable(cause error) (*Engine, error) {
	e.disabled = true
	e.requests.Close()
	close(e.done)

	err := fmt.Errorf("%w: %w", ErrAudioUnavailable, cause)
	logger.Warn("sidetone disabled", "error", err)
	return e, err
}

// SetFrequency changes the pitch from the next burst on.
func (e *Engine) SetFrequency(hz int) {
	e.frequency.Store(int32(hz))
}

func (e *Engine) Frequency() int {
	return int(e.frequency.Load())
}

// SetSpacing changes the inter-symbol gap, as a percentage of one unit, from
// the next gap on.
func (e *Engine) SetSpacing(pct int) {
	e.spacing.Store(int32(pct))
}

func (e *Engine) Spacing() int {
	return int(e.spacing.Load())
}

// Enabled reports whether the engine has a working sink.
func (e *Engine) Enabled() bool {
	return !e.disabled
}

// Play queues pattern for rendering at wpm and returns immediately. Requests
// with an empty pattern or a non-positive speed are dropped, as is
// everything sent to a disabled or shut down engine.
func (e *Engine) Play(pattern string, wpm int) {
	if e.disabled || pattern == "" || wpm <= 0 {
		droppedRequestsCounter.Add(context.Background(), 1)
		return
	}

	if !e.requests.Push(request{pattern: pattern, wpm: wpm, queuedAt: time.Now()}) {
		droppedRequestsCounter.Add(context.Background(), 1)
	}
}

// Pending returns the number of requests waiting to be rendered.
func (e *Engine) Pending() int {
	return e.requests.Len()
}

// Shutdown stops rendering and closes the sink. Audio in flight is
// abandoned. It is safe to call more than once.
func (e *Engine) Shutdown() {
	e.shutdownOnce.Do(func() {
		if e.disabled {
			return
		}

		e.cancel()
		e.requests.Close()
		if err := e.sink.Close(); err != nil {
			logger.Debug("failed to close audio sink", "error", err)
		}
		<-e.done
	})
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	s := &synth{info: e.info}
	for {
		req, err := e.requests.Pop(ctx)
		if err != nil {
			return
		}

		if err := e.render(ctx, s, req); err != nil {
			if errors.Is(err, audio.ErrClosed) || ctx.Err() != nil {
				return
			}
			logger.Warn("failed to render pattern", "pattern", req.pattern, "error", err)
		}
	}
}

func (e *Engine) render(ctx context.Context, s *synth, req request) (err error) {
	ctx, span := tracer.Start(ctx, "sidetone.render", trace.WithAttributes(
		attribute.String("sidetone.pattern", req.pattern),
		attribute.Int("sidetone.wpm", req.wpm),
	))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	queuedTime := time.Since(req.queuedAt).Seconds()
	span.SetAttributes(attribute.Float64("sidetone.queued_time", queuedTime))

	unit := unitNumerator / req.wpm
	symbols := symbolDurations(req.pattern, unit)

	for i, durationMs := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := e.sink.Write(s.tone(durationMs, float64(e.frequency.Load()))); err != nil {
			return fmt.Errorf("failed to write burst: %w", err)
		}
		burstsRenderedCounter.Add(ctx, 1)

		if i < len(symbols)-1 {
			gap := max(1, unit*int(e.spacing.Load())/100)
			if err := e.sink.Write(s.silence(gap)); err != nil {
				return fmt.Errorf("failed to write gap: %w", err)
			}
		}
	}

	if err := e.sink.Drain(); err != nil {
		return fmt.Errorf("failed to drain sink: %w", err)
	}
	return nil
}

// symbolDurations maps each '.' and '-' in pattern to its length in ms.
// Anything else is skipped.
func symbolDurations(pattern string, unit int) []int {
	durations := make([]int, 0, len(pattern))
	for _, r := range pattern {
		switch r {
		case '.':
			durations = append(durations, unit)
		case '-':
			durations = append(durations, 3*unit)
		}
	}
	return durations
}
