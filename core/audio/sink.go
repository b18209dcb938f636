// Package audio describes PCM encodings and the output devices the sidetone
// engine writes to. Backends live in the miniaudio and portaudio
// sub-packages.
package audio

import "errors"

// ErrClosed is returned by Sink methods after Close.
var ErrClosed = errors.New("audio sink closed")

// Sink is an open audio output.
//
// Write queues PCM in the sink's encoding and blocks while the device is
// more than a small window ahead of playback, so a writer cannot race ahead
// of real time. Drain blocks until everything written has been played.
// Close releases the device and unblocks any pending Write or Drain.
type Sink interface {
	Write(pcm []byte) error
	Drain() error
	Close() error
}

// Opener opens a Sink for the given encoding.
type Opener func(info EncodingInfo) (Sink, error)
