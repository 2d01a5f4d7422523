package audio

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	gowav "github.com/youpy/go-wav"
)

func mustTone(t *testing.T, freq, duration float64, sampleRate int) []int16 {
	t.Helper()
	samples, err := GenerateTone(ToneSpec{
		Frequency:  freq,
		Duration:   duration,
		SampleRate: sampleRate,
		Amplitude:  DefaultAmplitude,
	})
	if err != nil {
		t.Fatalf("GenerateTone failed: %v", err)
	}
	return samples
}

func TestEncodeContainerMono16(t *testing.T) {
	samples := mustTone(t, 440, 0.1, 8000)

	wavData, err := EncodeContainer(samples, nil, ContainerSpec{Channels: 1, BitDepth: 16, SampleRate: 8000})
	if err != nil {
		t.Fatalf("EncodeContainer failed: %v", err)
	}

	expectedSize := HeaderSize + len(samples)*2
	if len(wavData) != expectedSize {
		t.Errorf("Expected WAV size %d, got %d", expectedSize, len(wavData))
	}

	if err := ValidateWAV(wavData); err != nil {
		t.Errorf("Generated WAV is invalid: %v", err)
	}

	info, err := GetWAVInfo(wavData)
	if err != nil {
		t.Fatalf("Failed to get WAV info: %v", err)
	}

	if info.SampleRate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("Expected 1 channel, got %d", info.Channels)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", info.BitsPerSample)
	}
	if int(info.NumFrames) != len(samples) {
		t.Errorf("Expected %d frames, got %d", len(samples), info.NumFrames)
	}
	if math.Abs(info.Duration-0.1) > 0.001 {
		t.Errorf("Expected duration 0.100, got %.3f", info.Duration)
	}
}

func TestEncodeContainerHeaderBytes(t *testing.T) {
	wavData, err := EncodeContainer([]int16{1, 2}, []int16{3, 4}, ContainerSpec{Channels: 2, BitDepth: 16, SampleRate: 48000})
	if err != nil {
		t.Fatalf("EncodeContainer failed: %v", err)
	}

	want := []byte{
		'R', 'I', 'F', 'F', 44, 0, 0, 0, 'W', 'A', 'V', 'E',
		'f', 'm', 't', ' ', 16, 0, 0, 0, 1, 0, 2, 0,
		0x80, 0xBB, 0, 0, // 48000
		0x00, 0xEE, 0x02, 0, // 192000
		4, 0, 16, 0,
		'd', 'a', 't', 'a', 8, 0, 0, 0,
		1, 0, 3, 0, 2, 0, 4, 0,
	}
	if !bytes.Equal(wavData, want) {
		t.Errorf("Unexpected encoding:\n got %v\nwant %v", wavData, want)
	}
}

func TestEncodeContainer8Bit(t *testing.T) {
	left := []int16{math.MinInt16, -1, 0, math.MaxInt16}
	right := []int16{0, 0, 256, -256}

	wavData, err := EncodeContainer(left, right, ContainerSpec{Channels: 2, BitDepth: 8, SampleRate: 22050})
	if err != nil {
		t.Fatalf("EncodeContainer failed: %v", err)
	}

	if len(wavData) != HeaderSize+len(left)*2 {
		t.Fatalf("Expected %d bytes, got %d", HeaderSize+len(left)*2, len(wavData))
	}

	want := []byte{0, 128, 127, 128, 128, 129, 255, 127}
	if got := wavData[HeaderSize:]; !bytes.Equal(got, want) {
		t.Errorf("Unexpected 8-bit payload: got %v, want %v", got, want)
	}
}

func TestEncodeContainerSilence8Bit(t *testing.T) {
	samples := mustTone(t, 0, 0.05, 8000)

	wavData, err := EncodeContainer(samples, nil, ContainerSpec{Channels: 1, BitDepth: 8, SampleRate: 8000})
	if err != nil {
		t.Fatalf("EncodeContainer failed: %v", err)
	}

	decoded, err := DecodeWAV(wavData)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if decoded.Frames() != 400 {
		t.Fatalf("Expected 400 frames, got %d", decoded.Frames())
	}
	for i, v := range decoded.Samples[0] {
		if v != 128 {
			t.Fatalf("Sample %d: expected midpoint 128, got %d", i, v)
		}
	}
}

func TestEncodeContainerErrors(t *testing.T) {
	left := []int16{1, 2, 3}

	tests := []struct {
		name  string
		right []int16
		spec  ContainerSpec
		want  error
	}{
		{"stereo length mismatch", []int16{1, 2}, ContainerSpec{Channels: 2, BitDepth: 16, SampleRate: 44100}, ErrInvalidArgument},
		{"stereo missing right", nil, ContainerSpec{Channels: 2, BitDepth: 16, SampleRate: 44100}, ErrInvalidArgument},
		{"mono with right", []int16{1, 2, 3}, ContainerSpec{Channels: 1, BitDepth: 16, SampleRate: 44100}, ErrInvalidArgument},
		{"zero sample rate", nil, ContainerSpec{Channels: 1, BitDepth: 16, SampleRate: 0}, ErrInvalidArgument},
		{"24-bit", nil, ContainerSpec{Channels: 1, BitDepth: 24, SampleRate: 44100}, ErrUnsupportedFormat},
		{"32-bit", nil, ContainerSpec{Channels: 1, BitDepth: 32, SampleRate: 44100}, ErrUnsupportedFormat},
		{"three channels", nil, ContainerSpec{Channels: 3, BitDepth: 16, SampleRate: 44100}, ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeContainer(left, tt.right, tt.spec)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestContainerSizeLimit(t *testing.T) {
	tests := []struct {
		name      string
		spec      ContainerSpec
		frames    int
		wantError bool
	}{
		{"mono 16-bit at limit", ContainerSpec{Channels: 1, BitDepth: 16, SampleRate: 44100}, MaxSamples, false},
		{"mono 16-bit past limit", ContainerSpec{Channels: 1, BitDepth: 16, SampleRate: 44100}, MaxSamples + 1, true},
		{"stereo 16-bit 48k for 7 hours", ContainerSpec{Channels: 2, BitDepth: 16, SampleRate: 48000}, 48000 * 7 * 3600, true},
		{"stereo 16-bit 48k for 6 hours", ContainerSpec{Channels: 2, BitDepth: 16, SampleRate: 48000}, 48000 * 6 * 3600, false},
		{"mono 8-bit past 16-bit limit", ContainerSpec{Channels: 1, BitDepth: 8, SampleRate: 8000}, MaxSamples + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.checkFrames(tt.frames)
			if tt.wantError && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
			}
			if !tt.wantError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestEncodeContainerEmpty(t *testing.T) {
	wavData, err := EncodeContainer([]int16{}, nil, ContainerSpec{Channels: 1, BitDepth: 16, SampleRate: 44100})
	if err != nil {
		t.Fatalf("EncodeContainer failed: %v", err)
	}
	if len(wavData) != HeaderSize {
		t.Errorf("Expected header only (%d bytes), got %d", HeaderSize, len(wavData))
	}
}

func TestDecodeWAVStereo(t *testing.T) {
	left := mustTone(t, 440, 0.01, 48000)
	right := mustTone(t, 660, 0.01, 48000)

	wavData, err := EncodeContainer(left, right, ContainerSpec{Channels: 2, BitDepth: 16, SampleRate: 48000})
	if err != nil {
		t.Fatalf("EncodeContainer failed: %v", err)
	}

	decoded, err := DecodeWAV(wavData)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if decoded.Header.NumChannels != 2 {
		t.Fatalf("Expected 2 channels, got %d", decoded.Header.NumChannels)
	}
	if decoded.Frames() != len(left) {
		t.Fatalf("Expected %d frames, got %d", len(left), decoded.Frames())
	}

	for i := range left {
		if decoded.Samples[0][i] != int(left[i]) {
			t.Fatalf("Left sample %d: expected %d, got %d", i, left[i], decoded.Samples[0][i])
		}
		if decoded.Samples[1][i] != int(right[i]) {
			t.Fatalf("Right sample %d: expected %d, got %d", i, right[i], decoded.Samples[1][i])
		}
	}
}

// An independent decoder must agree with the header and frame count.
func TestRoundTripExternalDecoder(t *testing.T) {
	tests := []struct {
		name      string
		spec      ContainerSpec
		freq      float64
		duration  float64
		wantFrame int
	}{
		{"mono 16-bit 44.1k", ContainerSpec{Channels: 1, BitDepth: 16, SampleRate: 44100}, 440, 1.0, 44100},
		{"stereo 16-bit 48k", ContainerSpec{Channels: 2, BitDepth: 16, SampleRate: 48000}, 440, 1.0, 48000},
		{"mono 16-bit 100ms", ContainerSpec{Channels: 1, BitDepth: 16, SampleRate: 44100}, 440, 0.1, 4410},
		{"mono 8-bit 8k", ContainerSpec{Channels: 1, BitDepth: 8, SampleRate: 8000}, 440, 0.25, 2000},
		{"stereo 8-bit 16k", ContainerSpec{Channels: 2, BitDepth: 8, SampleRate: 16000}, 440, 0.25, 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left := mustTone(t, tt.freq, tt.duration, tt.spec.SampleRate)
			var right []int16
			if tt.spec.Channels == 2 {
				right = mustTone(t, tt.freq*1.5, tt.duration, tt.spec.SampleRate)
			}

			wavData, err := EncodeContainer(left, right, tt.spec)
			if err != nil {
				t.Fatalf("EncodeContainer failed: %v", err)
			}

			reader := gowav.NewReader(bytes.NewReader(wavData))
			format, err := reader.Format()
			if err != nil {
				t.Fatalf("Format failed: %v", err)
			}

			if int(format.NumChannels) != tt.spec.Channels {
				t.Errorf("Expected %d channels, got %d", tt.spec.Channels, format.NumChannels)
			}
			if int(format.SampleRate) != tt.spec.SampleRate {
				t.Errorf("Expected sample rate %d, got %d", tt.spec.SampleRate, format.SampleRate)
			}
			if int(format.BitsPerSample) != tt.spec.BitDepth {
				t.Errorf("Expected %d bits, got %d", tt.spec.BitDepth, format.BitsPerSample)
			}

			frames := 0
			for {
				samples, err := reader.ReadSamples()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("ReadSamples failed: %v", err)
				}
				if tt.spec.BitDepth == 16 {
					for i, s := range samples {
						if s.Values[0] != int(left[frames+i]) {
							t.Fatalf("Frame %d: expected %d, got %d", frames+i, left[frames+i], s.Values[0])
						}
					}
				}
				frames += len(samples)
			}

			if frames != tt.wantFrame {
				t.Errorf("Expected %d frames, got %d", tt.wantFrame, frames)
			}
		})
	}
}

func TestValidateWAV(t *testing.T) {
	if err := ValidateWAV([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for short data, got %v", err)
	}

	invalidWAV := make([]byte, 50)
	copy(invalidWAV[0:4], []byte("FAKE"))
	if err := ValidateWAV(invalidWAV); err == nil {
		t.Error("Expected error for invalid RIFF header")
	}
}

func TestDecodeWAVTruncated(t *testing.T) {
	wavData, err := EncodeContainer([]int16{1, 2, 3, 4}, nil, ContainerSpec{Channels: 1, BitDepth: 16, SampleRate: 8000})
	if err != nil {
		t.Fatalf("EncodeContainer failed: %v", err)
	}

	if _, err := DecodeWAV(wavData[:len(wavData)-2]); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for truncated data, got %v", err)
	}
}

func TestGetWAVDuration(t *testing.T) {
	samples := make([]int16, 8000)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}

	wavData, err := EncodeContainer(samples, samples, ContainerSpec{Channels: 2, BitDepth: 16, SampleRate: 8000})
	if err != nil {
		t.Fatalf("EncodeContainer failed: %v", err)
	}

	duration, err := GetWAVDuration(wavData)
	if err != nil {
		t.Fatalf("GetWAVDuration failed: %v", err)
	}

	if math.Abs(duration-1.0) > 0.001 {
		t.Errorf("Expected duration 1.000, got %.3f", duration)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	data := []byte("RIFF....")

	if err := WriteFile(path, data); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("File contents mismatch: got %q, want %q", got, data)
	}
}

func TestWriteFileUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "tone.wav")

	err := WriteFile(path, []byte{0})
	if !errors.Is(err, ErrIO) {
		t.Fatalf("Expected ErrIO, got %v", err)
	}

	var pathErr *os.PathError
	if !errors.As(err, &pathErr) {
		t.Errorf("Expected wrapped *os.PathError, got %T", err)
	}
}
