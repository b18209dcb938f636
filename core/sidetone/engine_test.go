package sidetone

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/koscakluka/morse-client/core/audio"
)

func samples(ms int) int {
	return audio.SidetoneEncoding.SamplesIn(ms)
}

func TestPlayRendersSymbolsAndGaps(t *testing.T) {
	testCases := []struct {
		name    string
		pattern string
		wpm     int
		spacing int
		want    []int
	}{
		{
			name:    "dot dash at 20 wpm",
			pattern: ".-",
			wpm:     20,
			spacing: 100,
			want:    []int{samples(60), samples(60), samples(180)},
		},
		{
			name:    "half spacing",
			pattern: "..",
			wpm:     20,
			spacing: 50,
			want:    []int{samples(60), samples(30), samples(60)},
		},
		{
			name:    "gap never shorter than 1ms",
			pattern: "..",
			wpm:     200,
			spacing: 1,
			want:    []int{samples(6), samples(1), samples(6)},
		},
		{
			name:    "other characters are skipped",
			pattern: "x.y",
			wpm:     12,
			spacing: 100,
			want:    []int{samples(100)},
		},
		{
			name:    "unit truncates",
			pattern: "-",
			wpm:     7,
			spacing: 100,
			want:    []int{samples(3 * 171)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sink := newRecordingSink()
			engine, err := NewEngine(sink.opener(), WithSpacing(tc.spacing))
			if err != nil {
				t.Fatalf("expected engine to start, got %v", err)
			}
			defer engine.Shutdown()

			engine.Play(tc.pattern, tc.wpm)
			awaitDrains(t, sink, 1)

			if got := sink.writeSizes(); !slices.Equal(got, tc.want) {
				t.Fatalf("expected writes %v, got %v", tc.want, got)
			}
			if got := sink.drainMarks(); !slices.Equal(got, []int{len(tc.want)}) {
				t.Fatalf("expected one drain after the last write, got %v", got)
			}
		})
	}
}

func TestPlayRendersRequestsInOrder(t *testing.T) {
	sink := newRecordingSink()
	engine, err := NewEngine(sink.opener())
	if err != nil {
		t.Fatalf("expected engine to start, got %v", err)
	}
	defer engine.Shutdown()

	engine.Play("-", 20)
	engine.Play(".", 20)
	engine.Play("-", 10)
	awaitDrains(t, sink, 3)

	want := []int{samples(180), samples(60), samples(360)}
	if got := sink.writeSizes(); !slices.Equal(got, want) {
		t.Fatalf("expected writes %v, got %v", want, got)
	}
	if got := sink.drainMarks(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("expected a drain after each request, got %v", got)
	}
}

func TestPlayDropsInvalidRequests(t *testing.T) {
	sink := newRecordingSink()
	engine, err := NewEngine(sink.opener())
	if err != nil {
		t.Fatalf("expected engine to start, got %v", err)
	}
	defer engine.Shutdown()

	engine.Play(".", 0)
	engine.Play(".", -5)
	engine.Play("", 20)
	engine.Play("-", 20)
	awaitDrains(t, sink, 1)

	if got := sink.writeSizes(); !slices.Equal(got, []int{samples(180)}) {
		t.Fatalf("expected only the valid request to render, got %v", got)
	}

	select {
	case <-sink.drained:
		t.Fatalf("expected no further drains")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSettingsAreReadable(t *testing.T) {
	sink := newRecordingSink()
	engine, err := NewEngine(sink.opener(), WithFrequency(600), WithSpacing(150))
	if err != nil {
		t.Fatalf("expected engine to start, got %v", err)
	}
	defer engine.Shutdown()

	if got := engine.Frequency(); got != 600 {
		t.Fatalf("expected frequency 600, got %d", got)
	}
	if got := engine.Spacing(); got != 150 {
		t.Fatalf("expected spacing 150, got %d", got)
	}

	engine.SetFrequency(1200)
	engine.SetSpacing(40)
	if got := engine.Frequency(); got != 1200 {
		t.Fatalf("expected frequency 1200, got %d", got)
	}
	if got := engine.Spacing(); got != 40 {
		t.Fatalf("expected spacing 40, got %d", got)
	}
}

func TestDefaults(t *testing.T) {
	sink := newRecordingSink()
	engine, err := NewEngine(sink.opener())
	if err != nil {
		t.Fatalf("expected engine to start, got %v", err)
	}
	defer engine.Shutdown()

	if engine.Frequency() != DefaultFrequency || engine.Spacing() != DefaultSpacing {
		t.Fatalf("expected %d Hz at %d%%, got %d Hz at %d%%",
			DefaultFrequency, DefaultSpacing, engine.Frequency(), engine.Spacing())
	}
	if !engine.Enabled() {
		t.Fatalf("expected engine to be enabled")
	}
}

func TestUnavailableAudioDisablesEngine(t *testing.T) {
	cause := errors.New("no device")
	engine, err := NewEngine(func(audio.EncodingInfo) (audio.Sink, error) { return nil, cause })

	if !errors.Is(err, ErrAudioUnavailable) {
		t.Fatalf("expected ErrAudioUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
	if engine == nil {
		t.Fatalf("expected a usable engine")
	}
	if engine.Enabled() {
		t.Fatalf("expected engine to be disabled")
	}

	engine.Play(".-", 20)
	if got := engine.Pending(); got != 0 {
		t.Fatalf("expected nothing pending, got %d", got)
	}
	engine.Shutdown()
	engine.Shutdown()
}

func TestShutdownClosesSinkOnce(t *testing.T) {
	sink := newRecordingSink()
	engine, err := NewEngine(sink.opener())
	if err != nil {
		t.Fatalf("expected engine to start, got %v", err)
	}

	engine.Shutdown()
	engine.Shutdown()

	if got := sink.closes.Load(); got != 1 {
		t.Fatalf("expected sink closed once, got %d", got)
	}

	engine.Play(".", 20)
	if got := sink.writeSizes(); len(got) != 0 {
		t.Fatalf("expected no writes after shutdown, got %v", got)
	}
}

func TestEncodingOverride(t *testing.T) {
	var opened audio.EncodingInfo
	sink := newRecordingSink()
	engine, err := NewEngine(func(info audio.EncodingInfo) (audio.Sink, error) {
		opened = info
		return sink, nil
	}, WithEncoding(audio.EncodingInfo{SampleRate: 8000}))
	if err != nil {
		t.Fatalf("expected engine to start, got %v", err)
	}
	defer engine.Shutdown()

	if opened.SampleRate != 8000 || opened.Channels != 1 || opened.Format != audio.EncodingLinear16 {
		t.Fatalf("expected 8000 Hz mono linear16, got %+v", opened)
	}

	engine.Play(".", 20)
	awaitDrains(t, sink, 1)
	if got := sink.writeSizes(); !slices.Equal(got, []int{480}) {
		t.Fatalf("expected 480 samples, got %v", got)
	}
}

func TestPhaseCarriesAcrossRequests(t *testing.T) {
	sink := newRecordingSink()
	engine, err := NewEngine(sink.opener())
	if err != nil {
		t.Fatalf("expected engine to start, got %v", err)
	}
	defer engine.Shutdown()

	engine.Play(".", 20)
	engine.Play(".", 20)
	awaitDrains(t, sink, 2)

	sink.mu.Lock()
	writes := slices.Clone(sink.writes)
	sink.mu.Unlock()
	if len(writes) != 2 {
		t.Fatalf("expected two bursts, got %d writes", len(writes))
	}

	n := samples(60)
	frequency := float64(DefaultFrequency)
	step := 2 * math.Pi * frequency / float64(audio.SidetoneEncoding.SampleRate)
	phase := math.Mod(step*float64(n), 2*math.Pi)

	ramp := samples(rampMs)
	want := int16(math.Sin(phase+step*float64(ramp)) * amplitude * math.MaxInt16)
	got := int16(binary.LittleEndian.Uint16(writes[1][2*ramp:]))
	if got != want {
		t.Fatalf("expected second burst to continue at phase %.4f (sample %d), got %d", phase, want, got)
	}

	reference := &synth{info: audio.SidetoneEncoding}
	reference.tone(60, DefaultFrequency)
	if !bytes.Equal(writes[1], reference.tone(60, DefaultFrequency)) {
		t.Fatalf("expected second burst to match a continuous oscillator")
	}
}
