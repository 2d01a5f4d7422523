package fixtures

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/deeeed/expo-audio-stream/internal/audio"
)

func TestGenerateDefault(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir, audio.DefaultAmplitude, zaptest.NewLogger(t))

	results, err := gen.Generate(context.Background(), Default())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(results))
	}

	expected := map[string]struct {
		channels   uint16
		sampleRate uint32
		frames     uint32
	}{
		"test_mono_16bit_44100.wav":   {1, 44100, 44100},
		"test_stereo_16bit_48000.wav": {2, 48000, 48000},
		"test_short_100ms.wav":        {1, 44100, 4410},
		"test_silence.wav":            {1, 44100, 22050},
	}

	for name, want := range expected {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("Missing fixture %s: %v", name, err)
		}

		info, err := audio.GetWAVInfo(data)
		if err != nil {
			t.Fatalf("%s: GetWAVInfo failed: %v", name, err)
		}

		if info.Channels != want.channels {
			t.Errorf("%s: expected %d channels, got %d", name, want.channels, info.Channels)
		}
		if info.SampleRate != want.sampleRate {
			t.Errorf("%s: expected sample rate %d, got %d", name, want.sampleRate, info.SampleRate)
		}
		if info.BitsPerSample != 16 {
			t.Errorf("%s: expected 16 bits, got %d", name, info.BitsPerSample)
		}
		if info.NumFrames != want.frames {
			t.Errorf("%s: expected %d frames, got %d", name, want.frames, info.NumFrames)
		}
		if want := audio.HeaderSize + int(want.frames)*int(want.channels)*2; len(data) != want {
			t.Errorf("%s: expected %d bytes, got %d", name, want, len(data))
		}
	}
}

func TestGenerateSilenceIsZero(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir, audio.DefaultAmplitude, nil)

	silence := Fixture{Name: "silence.wav", Channels: 1, SampleRate: 8000, BitDepth: 16, Duration: 0.5, Frequency: 0}
	if _, err := gen.Generate(context.Background(), []Fixture{silence}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, silence.Name))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	decoded, err := audio.DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	for i, v := range decoded.Samples[0] {
		if v != 0 {
			t.Fatalf("Sample %d: expected 0, got %d", i, v)
		}
	}
}

func TestStereoRightChannelFrequency(t *testing.T) {
	f := Fixture{Name: "stereo.wav", Channels: 2, SampleRate: 8000, BitDepth: 16, Duration: 0.01, Frequency: 400}

	data, err := f.Encode(audio.DefaultAmplitude)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := audio.DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	right, err := audio.GenerateTone(audio.ToneSpec{Frequency: 600, Duration: 0.01, SampleRate: 8000, Amplitude: audio.DefaultAmplitude})
	if err != nil {
		t.Fatalf("GenerateTone failed: %v", err)
	}

	for i, s := range right {
		if decoded.Samples[1][i] != int(s) {
			t.Fatalf("Right sample %d: expected %d, got %d", i, s, decoded.Samples[1][i])
		}
	}
}

func TestGenerateStopsOnError(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir, audio.DefaultAmplitude, nil)

	batch := []Fixture{
		{Name: "ok.wav", Channels: 1, SampleRate: 8000, BitDepth: 16, Duration: 0.1, Frequency: 440},
		{Name: "bad.wav", Channels: 1, SampleRate: 8000, BitDepth: 24, Duration: 0.1, Frequency: 440},
		{Name: "never.wav", Channels: 1, SampleRate: 8000, BitDepth: 16, Duration: 0.1, Frequency: 440},
	}

	results, err := gen.Generate(context.Background(), batch)
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Fatalf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result before the failure, got %d", len(results))
	}
	if _, err := os.Stat(filepath.Join(dir, "never.wav")); !os.IsNotExist(err) {
		t.Errorf("Expected never.wav to be skipped, stat err = %v", err)
	}
}

func TestGenerateUnwritableDir(t *testing.T) {
	gen := NewGenerator(filepath.Join(t.TempDir(), "missing"), audio.DefaultAmplitude, nil)

	_, err := gen.Generate(context.Background(), Default()[:1])
	if !errors.Is(err, audio.ErrIO) {
		t.Fatalf("Expected ErrIO, got %v", err)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewGenerator(t.TempDir(), audio.DefaultAmplitude, nil)
	results, err := gen.Generate(ctx, Default())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestFixtureValidate(t *testing.T) {
	tests := []struct {
		name        string
		fixture     string
		expectError bool
	}{
		{"plain name", "tone.wav", false},
		{"empty", "", true},
		{"slash", "../tone.wav", true},
		{"backslash", `dir\tone.wav`, true},
		{"dot dot", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Fixture{Name: tt.fixture}.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
