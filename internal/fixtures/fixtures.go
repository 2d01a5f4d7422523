// Package fixtures regenerates the WAV files used by the Android unit tests.
package fixtures

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/deeeed/expo-audio-stream/internal/audio"
)

// RightChannelRatio is the frequency multiplier applied to the right channel
// of stereo fixtures so the channels are distinguishable.
const RightChannelRatio = 1.5

// Fixture is one WAV file to generate.
type Fixture struct {
	Name       string  `yaml:"name"`
	Channels   int     `yaml:"channels"`
	SampleRate int     `yaml:"sample_rate"`
	BitDepth   int     `yaml:"bit_depth"`
	Duration   float64 `yaml:"duration"`  // seconds
	Frequency  float64 `yaml:"frequency"` // Hz
}

// Default returns the fixture set checked in next to the Android tests.
func Default() []Fixture {
	return []Fixture{
		{Name: "test_mono_16bit_44100.wav", Channels: 1, SampleRate: 44100, BitDepth: 16, Duration: 1.0, Frequency: 440},
		{Name: "test_stereo_16bit_48000.wav", Channels: 2, SampleRate: 48000, BitDepth: 16, Duration: 1.0, Frequency: 440},
		{Name: "test_short_100ms.wav", Channels: 1, SampleRate: 44100, BitDepth: 16, Duration: 0.1, Frequency: 440},
		{Name: "test_silence.wav", Channels: 1, SampleRate: 44100, BitDepth: 16, Duration: 0.5, Frequency: 0},
	}
}

// Validate checks the fixture name; audio parameters are checked by the encoder.
func (f Fixture) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: fixture name cannot be empty", audio.ErrInvalidArgument)
	}
	if strings.ContainsAny(f.Name, `/\`) || f.Name == "." || f.Name == ".." {
		return fmt.Errorf("%w: fixture name %q must be a plain file name", audio.ErrInvalidArgument, f.Name)
	}
	return nil
}

// Encode synthesizes the fixture and returns the WAV file image.
func (f Fixture) Encode(amplitude float64) ([]byte, error) {
	tone := audio.ToneSpec{
		Frequency:  f.Frequency,
		Duration:   f.Duration,
		SampleRate: f.SampleRate,
		Amplitude:  amplitude,
	}

	left, err := audio.GenerateTone(tone)
	if err != nil {
		return nil, err
	}

	var right []int16
	if f.Channels == 2 {
		tone.Frequency = f.Frequency * RightChannelRatio
		if right, err = audio.GenerateTone(tone); err != nil {
			return nil, err
		}
	}

	return audio.EncodeContainer(left, right, audio.ContainerSpec{
		Channels:   f.Channels,
		BitDepth:   f.BitDepth,
		SampleRate: f.SampleRate,
	})
}

// Result describes a written fixture.
type Result struct {
	Fixture Fixture
	Path    string
	Bytes   int
}

// Generator writes fixtures into a directory.
type Generator struct {
	outputDir string
	amplitude float64
	logger    *zap.Logger
}

// NewGenerator creates a generator writing into outputDir.
func NewGenerator(outputDir string, amplitude float64, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		outputDir: outputDir,
		amplitude: amplitude,
		logger:    logger,
	}
}

// Generate writes every fixture in order and stops at the first failure.
func (g *Generator) Generate(ctx context.Context, fixtures []Fixture) ([]Result, error) {
	results := make([]Result, 0, len(fixtures))

	for _, f := range fixtures {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := g.generateOne(f)
		if err != nil {
			return results, fmt.Errorf("fixture %s: %w", f.Name, err)
		}
		results = append(results, res)
	}

	return results, nil
}

func (g *Generator) generateOne(f Fixture) (Result, error) {
	if err := f.Validate(); err != nil {
		return Result{}, err
	}

	path := filepath.Join(g.outputDir, f.Name)
	g.logger.Info("Creating fixture", zap.String("path", path))

	data, err := f.Encode(g.amplitude)
	if err != nil {
		return Result{}, err
	}

	if err := audio.WriteFile(path, data); err != nil {
		return Result{}, err
	}

	g.logger.Info("Created fixture",
		zap.String("path", path),
		zap.Float64("duration_seconds", f.Duration),
		zap.Int("sample_rate", f.SampleRate),
		zap.Int("channels", f.Channels),
		zap.Int("bit_depth", f.BitDepth),
		zap.Int("bytes", len(data)),
	)

	return Result{Fixture: f, Path: path, Bytes: len(data)}, nil
}
