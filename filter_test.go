package resound

import (
	"errors"
	"math"
	"testing"
)

// sineBuf renders a mono sine at freq for n samples.
func sineBuf(freq float64, sampleRate, n int) []Smp {
	buf := make([]Smp, n)
	for i := range buf {
		buf[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return buf
}

func rmsOf(buf []Smp) float64 {
	var sum float64
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(buf)))
}

func filterRMS(t *testing.T, params FilterParams, freq float64) float64 {
	t.Helper()
	const sr = 44100
	f := newSVFFilter(params, sr)
	in := sineBuf(freq, sr, sr/2)
	out := make([]Smp, len(in))
	for i, v := range in {
		out[i] = f.process(v)
	}
	// skip the settling transient
	return rmsOf(out[len(out)/2:])
}

func TestSVF_LowPassAttenuatesHighs(t *testing.T) {
	t.Parallel()

	params, err := NewFilterParams(FilterLowPass, Slope12, 1000, 0.3)
	if err != nil {
		t.Fatalf("NewFilterParams() error = %v", err)
	}
	low := filterRMS(t, params, 100)
	high := filterRMS(t, params, 8000)
	if high >= low/4 {
		t.Errorf("8 kHz rms %v not well below 100 Hz rms %v", high, low)
	}
}

func TestSVF_HighPassAttenuatesLows(t *testing.T) {
	t.Parallel()

	params, err := NewFilterParams(FilterHighPass, Slope12, 1000, 0.3)
	if err != nil {
		t.Fatalf("NewFilterParams() error = %v", err)
	}
	low := filterRMS(t, params, 100)
	high := filterRMS(t, params, 8000)
	if low >= high/4 {
		t.Errorf("100 Hz rms %v not well below 8 kHz rms %v", low, high)
	}
}

func TestSVF_BandPassPeaksAtCutoff(t *testing.T) {
	t.Parallel()

	params, err := NewFilterParams(FilterBandPass, Slope12, 1000, 0.3)
	if err != nil {
		t.Fatalf("NewFilterParams() error = %v", err)
	}
	center := filterRMS(t, params, 1000)
	below := filterRMS(t, params, 100)
	above := filterRMS(t, params, 8000)
	if center <= below || center <= above {
		t.Errorf("bandpass rms at cutoff %v not above neighbors (%v, %v)", center, below, above)
	}
}

func TestSVF_Slope24Steeper(t *testing.T) {
	t.Parallel()

	p12, err := NewFilterParams(FilterLowPass, Slope12, 500, 0.2)
	if err != nil {
		t.Fatalf("NewFilterParams() error = %v", err)
	}
	p24 := p12
	p24.Slope = Slope24
	out12 := filterRMS(t, p12, 6000)
	out24 := filterRMS(t, p24, 6000)
	if out24 >= out12 {
		t.Errorf("24 dB/oct rms %v not below 12 dB/oct rms %v in the stopband", out24, out12)
	}
}

func TestSVF_NoneModePassesThrough(t *testing.T) {
	t.Parallel()

	f := newSVFFilter(FilterParams{Mode: FilterNone}, 44100)
	for _, in := range []Smp{0, 0.5, -1.5, 3} {
		if out := f.process(in); out != in {
			t.Errorf("process(%v) = %v, want passthrough", in, out)
		}
	}
}

func TestSVF_OutputBounded(t *testing.T) {
	t.Parallel()

	params, err := NewFilterParams(FilterLowPass, Slope12, 2000, 0.98)
	if err != nil {
		t.Fatalf("NewFilterParams() error = %v", err)
	}
	f := newSVFFilter(params, 44100)
	ns := noiseState{state: 7}
	for i := 0; i < 44100; i++ {
		out := f.process(Smp(ns.next()) * 2)
		if !isFinite(out) || math.Abs(out) > stateResetLimit {
			t.Fatalf("sample %d: output %v escaped bounds", i, out)
		}
	}
}

func TestSVF_StabilityResetPassesInput(t *testing.T) {
	t.Parallel()

	var s svfStage
	s.low = stateResetLimit * 2
	in := Smp(0.25)
	if out := s.process(in, 0.1, 1, FilterLowPass); out != in {
		t.Errorf("runaway stage output = %v, want input %v", out, in)
	}
	if s.low != 0 || s.band != 0 {
		t.Errorf("stage state not reset: low=%v band=%v", s.low, s.band)
	}
}

func TestNewFilterParams_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewFilterParams(FilterLowPass, Slope12, 0, 0.5); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero cutoff err = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewFilterParams(FilterLowPass, Slope12, 1000, 1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("resonance 1 err = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewFilterParams(FilterLowPass, Slope12, math.Inf(1), 0.5); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("inf cutoff err = %v, want ErrInvalidParameter", err)
	}
}
