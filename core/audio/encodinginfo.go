package audio

const (
	DefaultSampleRate = 44100
	DefaultChannels   = 1
)

// SidetoneEncoding is the format the sidetone engine renders: 16-bit signed
// little-endian mono PCM at 44.1 kHz.
var SidetoneEncoding = EncodingInfo{
	SampleRate: DefaultSampleRate,
	Channels:   DefaultChannels,
	Format:     EncodingLinear16,
}

func GetDefaultEncodingInfo() EncodingInfo {
	return SidetoneEncoding
}

type EncodingInfo struct {
	SampleRate int
	Channels   int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Channels == 0 || e.Format.Name() == ""
}

// BytesPerFrame returns the size of one sample across all channels.
func (e EncodingInfo) BytesPerFrame() int {
	return e.Format.ByteSize() * e.Channels
}

// SamplesIn returns the number of samples per channel in durationMs
// milliseconds, truncated.
func (e EncodingInfo) SamplesIn(durationMs int) int {
	return int(float64(e.SampleRate) * float64(durationMs) / 1000.0)
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	if e == EncodingLinear16 {
		return 2
	}
	return -1
}

// EncodingLinear16 is the only format the playback backends accept.
const EncodingLinear16 encodingFormat = "linear16"
