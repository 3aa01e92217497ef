package resound

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWAV_RoundTrip(t *testing.T) {
	t.Parallel()

	src := &Sample{Data: make([]float32, 4410), Rate: 44100}
	for i := range src.Data {
		src.Data[i] = 0.5 * float32(math.Sin(2*math.Pi*440*float64(i)/44100))
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := src.WriteWAV(path); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	got, err := LoadWAV(path)
	if err != nil {
		t.Fatalf("LoadWAV() error = %v", err)
	}
	if got.Rate != 44100 {
		t.Errorf("rate = %d, want 44100", got.Rate)
	}
	if len(got.Data) != len(src.Data) {
		t.Fatalf("frames = %d, want %d", len(got.Data), len(src.Data))
	}
	// 16-bit quantization plus the 32767/32768 scale asymmetry
	for i := range src.Data {
		if math.Abs(float64(got.Data[i]-src.Data[i])) > 1.0/16384 {
			t.Fatalf("frame %d: %v, want %v", i, got.Data[i], src.Data[i])
		}
	}
}

func TestWAV_StereoDownmix(t *testing.T) {
	t.Parallel()

	// hard-panned stereo averages to half level on load
	frames := 1000
	stereo := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		stereo[i*2] = 0.8
		stereo[i*2+1] = 0
	}
	path := filepath.Join(t.TempDir(), "stereo.wav")
	if err := WriteStereoWAV(path, stereo, 44100); err != nil {
		t.Fatalf("WriteStereoWAV() error = %v", err)
	}
	got, err := LoadWAV(path)
	if err != nil {
		t.Fatalf("LoadWAV() error = %v", err)
	}
	if len(got.Data) != frames {
		t.Fatalf("frames = %d, want %d", len(got.Data), frames)
	}
	if math.Abs(float64(got.Data[100])-0.4) > 1.0/16384 {
		t.Errorf("downmixed sample = %v, want 0.4", got.Data[100])
	}
}

func TestLoadWAV_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadWAV(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Error("LoadWAV() on a missing file returned nil error")
	}
}

func TestFloat32ToPCM16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float32
		want int
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2, 32767},   // clamped
		{-2, -32767}, // clamped
		{0.5, 16383},
	}
	for _, tt := range tests {
		if got := float32ToPCM16(tt.in); got != tt.want {
			t.Errorf("float32ToPCM16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
