package miniaudio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/morse-client/core/audio"
)

// bufferWindowMs is how far ahead of the device SendAudio may run before it
// blocks.
const bufferWindowMs = 100

type playbackClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	// latency is the audio held in the device's periods once the callback
	// has copied it out
	latency time.Duration

	maxBuffered   int
	leftoverAudio []byte
	marks         []playbackMark
	closed        bool

	consumed chan struct{}
	closedCh chan struct{}

	mu      sync.Mutex
	audioMu sync.Mutex
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext, info audio.EncodingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(info.SampleRate)
	channels := info.Channels
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = sampleRate
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = sampleRate / 100 // ~10ms of audio
	c.config.Periods = 3

	c.audioContext = audioContext
	c.latency = deviceLatency(c.config)
	c.maxBuffered = int(sampleRate) * bytesPerFrame * bufferWindowMs / 1000
	c.consumed = make(chan struct{}, 1)
	c.closedCh = make(chan struct{})

	var err error
	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio(bytesPerFrame)},
	); err != nil {
		return err
	}

	return nil
}

func (c *playbackClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

// SendAudio queues audio for playback, blocking while more than
// bufferWindowMs is already queued.
func (c *playbackClient) SendAudio(audioData []byte) error {
	for len(audioData) > 0 {
		c.audioMu.Lock()
		if c.closed {
			c.audioMu.Unlock()
			return audio.ErrClosed
		}
		room := c.maxBuffered - len(c.leftoverAudio)
		if room > 0 {
			n := min(room, len(audioData))
			c.leftoverAudio = append(c.leftoverAudio, audioData[:n]...)
			audioData = audioData[n:]
			c.audioMu.Unlock()
			continue
		}
		c.audioMu.Unlock()

		select {
		case <-c.consumed:
		case <-c.closedCh:
			return audio.ErrClosed
		}
	}
	return nil
}

// AwaitMark blocks until everything queued so far has been handed to the
// device and the device periods holding it have played out.
func (c *playbackClient) AwaitMark() error {
	played := make(chan struct{})
	if err := c.Mark("", func(string) { close(played) }); err != nil {
		return err
	}

	select {
	case <-played:
	case <-c.closedCh:
		return audio.ErrClosed
	}

	select {
	case <-time.After(c.latency):
		return nil
	case <-c.closedCh:
		return audio.ErrClosed
	}
}

func (c *playbackClient) Mark(mark string, callback func(string)) error {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	if c.closed {
		return audio.ErrClosed
	}
	c.marks = append(c.marks, playbackMark{
		name:     mark,
		position: len(c.leftoverAudio),
		callback: callback,
	})
	return nil
}

func (c *playbackClient) Uninit() error {
	c.audioMu.Lock()
	if !c.closed {
		c.closed = true
		if c.closedCh != nil {
			close(c.closedCh)
		}
	}
	c.leftoverAudio = nil
	c.marks = nil
	c.audioMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	c.device.Uninit()
	c.device = nil

	return nil
}

// deviceLatency is the duration of audio the device buffers across its
// periods.
func deviceLatency(config malgo.DeviceConfig) time.Duration {
	if config.SampleRate == 0 {
		return 0
	}
	frames := time.Duration(config.Periods) * time.Duration(config.PeriodSizeInFrames)
	return frames * time.Second / time.Duration(config.SampleRate)
}

type playbackMark struct {
	name     string
	position int
	callback func(string)
}

func (c *playbackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		c.audioMu.Lock()
		n := copy(pOutput[:need], c.leftoverAudio)
		clear(pOutput[n:need])
		c.leftoverAudio = c.leftoverAudio[n:]
		passed := c.takePassedMarks(n)
		c.audioMu.Unlock()

		select {
		case c.consumed <- struct{}{}:
		default:
		}

		if len(passed) > 0 {
			go func() {
				for _, mark := range passed {
					mark.callback(mark.name)
				}
			}()
		}
	}
}

// takePassedMarks advances marks by consumed bytes and removes the ones the
// playhead has reached. Callers hold audioMu.
func (c *playbackClient) takePassedMarks(consumed int) []playbackMark {
	passedMarks := 0
	for i := range c.marks {
		c.marks[i].position -= consumed
		if c.marks[i].position <= 0 {
			passedMarks++
		}
	}
	if passedMarks == 0 {
		return nil
	}

	passed := c.marks[:passedMarks]
	c.marks = c.marks[passedMarks:]
	return passed
}
