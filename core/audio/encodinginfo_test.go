package audio

import "testing"

func TestSidetoneEncoding(t *testing.T) {
	info := GetDefaultEncodingInfo()

	if info.IsZero() {
		t.Fatalf("expected default encoding to be set")
	}
	if info.SampleRate != 44100 {
		t.Fatalf("expected 44100 Hz, got %d", info.SampleRate)
	}
	if info.Format.ByteSize() != 2 {
		t.Fatalf("expected 16-bit samples, got %d bytes", info.Format.ByteSize())
	}
	if info.BytesPerFrame() != 2 {
		t.Fatalf("expected 2 bytes per frame, got %d", info.BytesPerFrame())
	}
}

func TestSamplesIn(t *testing.T) {
	info := GetDefaultEncodingInfo()

	testCases := []struct {
		durationMs int
		expected   int
	}{
		{durationMs: 60, expected: 2646},
		{durationMs: 180, expected: 7938},
		{durationMs: 1, expected: 44},
		{durationMs: 0, expected: 0},
	}

	for _, testCase := range testCases {
		if got := info.SamplesIn(testCase.durationMs); got != testCase.expected {
			t.Fatalf("expected %d samples in %d ms, got %d", testCase.expected, testCase.durationMs, got)
		}
	}
}
