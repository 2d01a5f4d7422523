package audio

import (
	"errors"
	"fmt"
	"math"
)

// DefaultAmplitude is the tone amplitude used when a caller does not pick one.
const DefaultAmplitude = 0.5

// fullScale maps a unit-amplitude sample onto the signed 16-bit range.
const fullScale = 32767

var (
	// ErrInvalidArgument reports a tone or container parameter out of range.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedFormat reports a channel count or bit depth that cannot be encoded.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrIO reports a failure writing the output file.
	ErrIO = errors.New("i/o error")
)

// MaxSamples bounds the length of a generated tone. It is the largest
// mono 16-bit buffer whose data chunk still fits a RIFF size field.
const MaxSamples = (math.MaxUint32 - (HeaderSize - 8)) / 2

// ToneSpec describes a pure sine tone. Amplitude has no implicit default:
// the zero value synthesizes silence, so callers normally set it to
// DefaultAmplitude.
type ToneSpec struct {
	Frequency  float64 // Hz, 0 produces silence
	Duration   float64 // seconds
	SampleRate int     // Hz
	Amplitude  float64 // 0..1
}

// Validate checks that the tone can be synthesized
func (s ToneSpec) Validate() error {
	if math.IsNaN(s.Duration) || math.IsInf(s.Duration, 0) || s.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidArgument, s.Duration)
	}

	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidArgument, s.SampleRate)
	}

	if math.IsNaN(s.Frequency) || math.IsInf(s.Frequency, 0) || s.Frequency < 0 {
		return fmt.Errorf("%w: frequency must be zero or positive, got %v", ErrInvalidArgument, s.Frequency)
	}

	if math.IsNaN(s.Amplitude) || s.Amplitude < 0 || s.Amplitude > 1 {
		return fmt.Errorf("%w: amplitude must be between 0 and 1, got %v", ErrInvalidArgument, s.Amplitude)
	}

	if n := math.Floor(s.Duration * float64(s.SampleRate)); n > MaxSamples {
		return fmt.Errorf("%w: %v s at %d Hz exceeds %d samples",
			ErrInvalidArgument, s.Duration, s.SampleRate, MaxSamples)
	}

	return nil
}

// NumSamples returns the number of samples the tone occupies. The product
// of duration and sample rate is truncated, never rounded up.
func (s ToneSpec) NumSamples() int {
	return int(math.Floor(s.Duration * float64(s.SampleRate)))
}

// GenerateTone synthesizes a mono sine tone as signed 16-bit PCM samples.
// The amplitude is taken from spec as given; pass DefaultAmplitude for the
// usual half-scale tone.
func GenerateTone(spec ToneSpec) ([]int16, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	samples := make([]int16, spec.NumSamples())
	if spec.Frequency == 0 {
		return samples, nil
	}

	step := 2 * math.Pi * spec.Frequency / float64(spec.SampleRate)
	for i := range samples {
		v := math.Round(spec.Amplitude * math.Sin(step*float64(i)) * fullScale)
		samples[i] = clamp16(v)
	}

	return samples, nil
}

func clamp16(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

// ToUnsigned8 rescales a signed 16-bit sample to offset-binary unsigned
// 8-bit, where silence is 128.
func ToUnsigned8(s int16) uint8 {
	return uint8(((int32(s) + 32768) >> 8) & 0xFF)
}
