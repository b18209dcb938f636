package portaudio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/morse-client/core/audio"
)

// defaultBufferSize is the stream buffer in frames, about 10ms at 44.1kHz.
const defaultBufferSize = 441

type Client struct {
	bufferSize int
	stream     *portaudio.Stream
	latency    time.Duration

	// mu is held for the duration of each blocking stream write
	mu            sync.Mutex
	leftoverAudio []byte
	out           []int16

	closed    atomic.Bool
	closeOnce sync.Once
}

// Open opens the default output stream. It satisfies audio.Opener.
func Open(info audio.EncodingInfo) (audio.Sink, error) {
	return NewClient(info, defaultBufferSize)
}

func NewClient(info audio.EncodingInfo, bufferSize int) (*Client, error) {
	if info.IsZero() {
		info = audio.GetDefaultEncodingInfo()
	}
	if info.Format != audio.EncodingLinear16 {
		return nil, fmt.Errorf("unsupported encoding %q", info.Format.Name())
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	out := make([]int16, bufferSize*info.Channels)
	stream, err := portaudio.OpenDefaultStream(0, info.Channels, float64(info.SampleRate), bufferSize, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open PortAudio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start PortAudio stream: %w", err)
	}

	client := &Client{
		bufferSize: bufferSize,
		stream:     stream,
		out:        out,
	}
	if streamInfo := stream.Info(); streamInfo != nil {
		client.latency = streamInfo.OutputLatency
	}

	return client, nil
}

// Write plays pcm through the stream one buffer at a time. A trailing
// partial buffer is kept until the next Write or Drain.
func (c *Client) Write(pcm []byte) error {
	frameBytes := len(c.out) * 2

	c.mu.Lock()
	defer c.mu.Unlock()

	c.leftoverAudio = append(c.leftoverAudio, pcm...)
	for len(c.leftoverAudio) >= frameBytes {
		if err := c.writeFrame(c.leftoverAudio[:frameBytes]); err != nil {
			return err
		}
		c.leftoverAudio = c.leftoverAudio[frameBytes:]
	}
	if len(c.leftoverAudio) == 0 {
		c.leftoverAudio = nil
	}

	return nil
}

// Drain pads the partial buffer with silence, writes it, and waits for the
// stream's output latency.
func (c *Client) Drain() error {
	c.mu.Lock()
	if len(c.leftoverAudio) > 0 {
		frame := make([]byte, len(c.out)*2)
		copy(frame, c.leftoverAudio)
		c.leftoverAudio = nil
		if err := c.writeFrame(frame); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.mu.Unlock()

	if c.closed.Load() {
		return audio.ErrClosed
	}
	time.Sleep(c.latency)
	return nil
}

func (c *Client) writeFrame(frame []byte) error {
	if c.closed.Load() {
		return audio.ErrClosed
	}

	for i := range c.out {
		c.out[i] = int16(binary.LittleEndian.Uint16(frame[2*i:]))
	}
	if err := c.stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
		return fmt.Errorf("failed to write to PortAudio stream: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	c.closed.Store(true)

	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.leftoverAudio = nil
		if stopErr := c.stream.Stop(); stopErr != nil {
			err = fmt.Errorf("failed to stop PortAudio stream: %w", stopErr)
		}
		c.stream.Close()
		portaudio.Terminate()
	})
	return err
}
