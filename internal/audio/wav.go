package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderSize is the length of the canonical PCM WAV header.
const HeaderSize = 44

const formatPCM = 1

// WAVHeader represents the header structure of a WAV file
type WAVHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16  // Number of channels
	SampleRate    uint32  // Sample rate
	ByteRate      uint32  // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16  // NumChannels * BitsPerSample / 8
	BitsPerSample uint16  // Bits per sample
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

// ContainerSpec describes how a sample buffer is serialized.
type ContainerSpec struct {
	Channels   int
	BitDepth   int
	SampleRate int
}

// Validate checks that the container can be encoded
func (c ContainerSpec) Validate() error {
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("%w: channel count must be 1 or 2, got %d", ErrUnsupportedFormat, c.Channels)
	}

	if c.BitDepth != 16 && c.BitDepth != 8 {
		return fmt.Errorf("%w: bit depth must be 8 or 16, got %d", ErrUnsupportedFormat, c.BitDepth)
	}

	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidArgument, c.SampleRate)
	}

	return nil
}

// BlockAlign returns the number of bytes in one frame.
func (c ContainerSpec) BlockAlign() int {
	return c.Channels * c.BitDepth / 8
}

// DataSize returns the encoded length of numFrames frames.
func (c ContainerSpec) DataSize(numFrames int) int {
	return numFrames * c.BlockAlign()
}

// checkFrames rejects frame counts whose data chunk would overflow the
// 32-bit RIFF size fields.
func (c ContainerSpec) checkFrames(numFrames int) error {
	size := uint64(HeaderSize-8) + uint64(numFrames)*uint64(c.BlockAlign())
	if size > math.MaxUint32 {
		return fmt.Errorf("%w: %d frames of %d bytes exceed the 4 GiB RIFF limit",
			ErrUnsupportedFormat, numFrames, c.BlockAlign())
	}
	return nil
}

func (c ContainerSpec) header(dataSize uint32) WAVHeader {
	return WAVHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   formatPCM,
		NumChannels:   uint16(c.Channels),
		SampleRate:    uint32(c.SampleRate),
		ByteRate:      uint32(c.SampleRate) * uint32(c.BlockAlign()),
		BlockAlign:    uint16(c.BlockAlign()),
		BitsPerSample: uint16(c.BitDepth),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
}

// EncodeContainer packs one (mono) or two (stereo) sample buffers into a
// WAV file image. right must be nil for mono and the same length as left
// for stereo; stereo frames are interleaved left first.
func EncodeContainer(left, right []int16, spec ContainerSpec) ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	switch spec.Channels {
	case 1:
		if right != nil {
			return nil, fmt.Errorf("%w: mono container takes a single buffer", ErrInvalidArgument)
		}
	case 2:
		if right == nil {
			return nil, fmt.Errorf("%w: stereo container requires a right buffer", ErrInvalidArgument)
		}
		if len(right) != len(left) {
			return nil, fmt.Errorf("%w: channel length mismatch: left %d, right %d samples",
				ErrInvalidArgument, len(left), len(right))
		}
	}

	if err := spec.checkFrames(len(left)); err != nil {
		return nil, err
	}

	dataSize := spec.DataSize(len(left))
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+dataSize))

	if err := binary.Write(buf, binary.LittleEndian, spec.header(uint32(dataSize))); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}

	frame := make([]byte, spec.BlockAlign())
	for i := range left {
		pos := 0
		for ch := 0; ch < spec.Channels; ch++ {
			s := left[i]
			if ch == 1 {
				s = right[i]
			}
			if spec.BitDepth == 8 {
				frame[pos] = ToUnsigned8(s)
				pos++
				continue
			}
			binary.LittleEndian.PutUint16(frame[pos:], uint16(s))
			pos += 2
		}
		buf.Write(frame)
	}

	return buf.Bytes(), nil
}

// Decoded holds a parsed WAV file. Samples are stored per channel in their
// on-disk representation: signed values for 16-bit data, 0..255 for 8-bit.
type Decoded struct {
	Header  WAVHeader
	Samples [][]int
}

// Frames returns the number of decoded frames.
func (d *Decoded) Frames() int {
	if len(d.Samples) == 0 {
		return 0
	}
	return len(d.Samples[0])
}

// DecodeWAV parses a canonical PCM WAV file image
func DecodeWAV(data []byte) (*Decoded, error) {
	header, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	if header.AudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: audio format %d (only PCM is supported)", ErrUnsupportedFormat, header.AudioFormat)
	}

	spec := ContainerSpec{
		Channels:   int(header.NumChannels),
		BitDepth:   int(header.BitsPerSample),
		SampleRate: int(header.SampleRate),
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	payload := data[HeaderSize:]
	if int(header.Subchunk2Size) > len(payload) {
		return nil, fmt.Errorf("%w: data chunk declares %d bytes, only %d present",
			ErrInvalidArgument, header.Subchunk2Size, len(payload))
	}
	payload = payload[:header.Subchunk2Size]

	numFrames := len(payload) / spec.BlockAlign()
	samples := make([][]int, spec.Channels)
	for ch := range samples {
		samples[ch] = make([]int, numFrames)
	}

	pos := 0
	for i := 0; i < numFrames; i++ {
		for ch := 0; ch < spec.Channels; ch++ {
			if spec.BitDepth == 8 {
				samples[ch][i] = int(payload[pos])
				pos++
				continue
			}
			samples[ch][i] = int(int16(binary.LittleEndian.Uint16(payload[pos:])))
			pos += 2
		}
	}

	return &Decoded{Header: header, Samples: samples}, nil
}

func readHeader(data []byte) (WAVHeader, error) {
	var header WAVHeader
	if err := ValidateWAV(data); err != nil {
		return header, err
	}

	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return header, fmt.Errorf("failed to read WAV header: %w", err)
	}

	return header, nil
}

// ValidateWAV validates a WAV file format without decoding the entire audio data
func ValidateWAV(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: WAV data too short: need at least %d bytes, got %d",
			ErrInvalidArgument, HeaderSize, len(data))
	}

	if string(data[0:4]) != "RIFF" {
		return fmt.Errorf("%w: invalid WAV file: missing RIFF header", ErrInvalidArgument)
	}

	if string(data[8:12]) != "WAVE" {
		return fmt.Errorf("%w: invalid WAV file: missing WAVE format", ErrInvalidArgument)
	}

	if string(data[12:16]) != "fmt " {
		return fmt.Errorf("%w: invalid WAV file: missing fmt chunk", ErrInvalidArgument)
	}

	if string(data[36:40]) != "data" {
		return fmt.Errorf("%w: invalid WAV file: missing data chunk", ErrInvalidArgument)
	}

	return nil
}

// WAVInfo is the metadata summary of a WAV file
type WAVInfo struct {
	SampleRate    uint32  `json:"sample_rate"`
	Channels      uint16  `json:"channels"`
	BitsPerSample uint16  `json:"bits_per_sample"`
	Duration      float64 `json:"duration_seconds"`
	DataSize      uint32  `json:"data_size_bytes"`
	NumFrames     uint32  `json:"num_frames"`
}

// GetWAVInfo extracts metadata from a WAV file
func GetWAVInfo(data []byte) (*WAVInfo, error) {
	header, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	if header.SampleRate == 0 {
		return nil, fmt.Errorf("%w: invalid sample rate: 0", ErrInvalidArgument)
	}

	if header.BlockAlign == 0 {
		return nil, fmt.Errorf("%w: invalid block align: 0", ErrInvalidArgument)
	}

	numFrames := header.Subchunk2Size / uint32(header.BlockAlign)

	return &WAVInfo{
		SampleRate:    header.SampleRate,
		Channels:      header.NumChannels,
		BitsPerSample: header.BitsPerSample,
		Duration:      float64(numFrames) / float64(header.SampleRate),
		DataSize:      header.Subchunk2Size,
		NumFrames:     numFrames,
	}, nil
}

// GetWAVDuration calculates the duration of a WAV file in seconds
func GetWAVDuration(data []byte) (float64, error) {
	info, err := GetWAVInfo(data)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}
