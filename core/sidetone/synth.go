package sidetone

import (
	"encoding/binary"
	"math"

	"github.com/koscakluka/morse-client/core/audio"
)

const (
	rampMs    = 5
	amplitude = 0.6
)

// synth renders tone bursts and silence. It owns the oscillator phase, so it
// must only be used from the render goroutine.
type synth struct {
	info  audio.EncodingInfo
	phase float64
}

// tone renders durationMs of a sine at frequency Hz with raised-cosine ramps
// at both ends. The ramp is capped at half the burst; a burst too short for
// any ramp sample comes out silent.
func (s *synth) tone(durationMs int, frequency float64) []byte {
	n := s.info.SamplesIn(durationMs)
	frameSize := s.info.BytesPerFrame()
	buf := make([]byte, n*frameSize)

	ramp := min(s.info.SamplesIn(rampMs), n/2)
	step := 2 * math.Pi * frequency / float64(s.info.SampleRate)

	if ramp > 0 {
		for i := range n {
			v := math.Sin(s.phase+step*float64(i)) * envelope(i, n, ramp) * amplitude
			sample := uint16(int16(v * math.MaxInt16))
			for ch := range s.info.Channels {
				binary.LittleEndian.PutUint16(buf[i*frameSize+2*ch:], sample)
			}
		}
	}

	s.phase = math.Mod(s.phase+step*float64(n), 2*math.Pi)
	return buf
}

// silence renders durationMs of silence. It leaves the phase untouched.
func (s *synth) silence(durationMs int) []byte {
	return make([]byte, s.info.SamplesIn(durationMs)*s.info.BytesPerFrame())
}

// envelope is the gain at sample i of an n-sample burst with ramp-sample
// fades. It is 0 at both ends and 1 across the body.
func envelope(i, n, ramp int) float64 {
	switch {
	case ramp <= 0:
		return 0
	case i < ramp:
		return 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(ramp)))
	case i >= n-ramp:
		return 0.5 * (1 - math.Cos(math.Pi*float64(n-1-i)/float64(ramp)))
	}
	return 1
}
