package sidetone

import "github.com/koscakluka/morse-client/core/audio"

type Option func(*Engine)

// WithFrequency sets the initial tone pitch in Hz.
func WithFrequency(hz int) Option {
	return func(e *Engine) { e.frequency.Store(int32(hz)) }
}

// WithSpacing sets the initial inter-symbol gap as a percentage of one unit.
func WithSpacing(pct int) Option {
	return func(e *Engine) { e.spacing.Store(int32(pct)) }
}

// WithEncoding overrides the sample rate and channel count. Output is always
// 16-bit linear PCM.
func WithEncoding(info audio.EncodingInfo) Option {
	return func(e *Engine) {
		if info.SampleRate > 0 {
			e.info.SampleRate = info.SampleRate
		}
		if info.Channels > 0 {
			e.info.Channels = info.Channels
		}
	}
}
