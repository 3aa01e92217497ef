package resound

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
)

// normalization factor for a given PCM bit depth
func pcmMaxValue(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 16:
		return 32768.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

// LoadWAV reads a WAV file into a mono Sample. Multi-channel input is
// downmixed by averaging.
func LoadWAV(path string) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%s has no channels", path)
	}
	maxVal := pcmMaxValue(int(dec.BitDepth))
	frames := len(buf.Data) / channels
	data := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[i*channels+c]) / maxVal
		}
		data[i] = sum / float32(channels)
	}
	return &Sample{Data: data, Rate: buf.Format.SampleRate}, nil
}

// LoadMP3 reads an MP3 file into a mono Sample. go-mp3 always outputs
// 16-bit little-endian stereo.
func LoadMP3(path string) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", path, err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	// 4 bytes per stereo frame
	frames := len(raw) / 4
	data := make([]float32, frames)
	for i := 0; i < frames; i++ {
		l := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		r := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		data[i] = (float32(l) + float32(r)) / (2 * 32768.0)
	}
	return &Sample{Data: data, Rate: dec.SampleRate()}, nil
}

func float32ToPCM16(v float32) int {
	s := int(clamp(Smp(v), -1, 1) * 32767)
	return s
}

// WriteWAV writes the sample to path as mono 16-bit PCM.
func (s *Sample) WriteWAV(path string) error {
	return writeWAV(path, s.Data, s.Rate, 1)
}

// WriteStereoWAV writes an interleaved stereo buffer to path as 16-bit
// PCM. This is the output path for rendered mixes.
func WriteStereoWAV(path string, data []float32, sampleRate int) error {
	return writeWAV(path, data, sampleRate, 2)
}

func writeWAV(path string, data []float32, sampleRate, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(data)),
		SourceBitDepth: 16,
	}
	for i, v := range data {
		buf.Data[i] = float32ToPCM16(v)
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("cannot finalize %s: %w", path, err)
	}
	return nil
}
