package resound

import (
	"errors"
	"math"
	"testing"
)

func TestEnvelope_AmpPhases(t *testing.T) {
	t.Parallel()

	env := Envelope{Attack: 0.1, Decay: 0.2, Sustain: 0.5, Release: 0.3}
	const dur = 1.0

	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{"before start", -0.1, 0},
		{"mid attack", 0.05, 0.5},
		{"attack peak", 0.1, 1},
		{"mid decay", 0.2, 0.75},
		{"sustain", 0.5, 0.5},
		{"just before release", 0.99, 0.5},
		{"mid release", 1.15, 0.25},
		{"after release", 1.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := float64(env.Amp(tt.t, dur))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Amp(%v, %v) = %v, want %v", tt.t, dur, got, tt.want)
			}
		})
	}
}

func TestEnvelope_AmpIsStateless(t *testing.T) {
	t.Parallel()

	env := DefaultEnvelope()
	// evaluating out of order must not change results
	a := env.Amp(0.5, 1)
	_ = env.Amp(0.001, 1)
	b := env.Amp(0.5, 1)
	if a != b {
		t.Errorf("Amp depends on call order: %v vs %v", a, b)
	}
}

func TestNewEnvelope_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                              string
		attack, decay, sustain, release   float64
	}{
		{"zero attack", 0, 0.1, 0.5, 0.1},
		{"negative decay", 0.1, -1, 0.5, 0.1},
		{"sustain above one", 0.1, 0.1, 1.5, 0.1},
		{"nan release", 0.1, 0.1, 0.5, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEnvelope(tt.attack, tt.decay, tt.sustain, tt.release)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestEnvelope_Tail(t *testing.T) {
	t.Parallel()

	env := Envelope{Attack: 0.01, Decay: 0.01, Sustain: 1, Release: 0.42}
	if env.Tail() != 0.42 {
		t.Errorf("Tail() = %v, want 0.42", env.Tail())
	}
}

func TestFilterEnvelope_CutoffSweep(t *testing.T) {
	t.Parallel()

	fe := FilterEnvelope{
		Env:        Envelope{Attack: 0.1, Decay: 0.1, Sustain: 1, Release: 0.1},
		BaseCutoff: 100,
		PeakCutoff: 10000,
		Amount:     1,
	}
	// at envelope peak the cutoff reaches the peak frequency
	got := fe.Cutoff(0.1, 1)
	if math.Abs(got-10000) > 1 {
		t.Errorf("Cutoff at peak = %v, want 10000", got)
	}
	// at t=0 the envelope is 0, cutoff sits at base
	got = fe.Cutoff(0, 1)
	if math.Abs(got-100) > 1 {
		t.Errorf("Cutoff at start = %v, want 100", got)
	}
	// halfway up the attack the sweep is geometric, not linear
	got = fe.Cutoff(0.05, 1)
	if math.Abs(got-1000) > 1 {
		t.Errorf("Cutoff mid-attack = %v, want 1000 (log-domain midpoint)", got)
	}
}

func TestFilterEnvelope_CutoffClamped(t *testing.T) {
	t.Parallel()

	fe := FilterEnvelope{
		Env:        Envelope{Attack: 0.001, Decay: 0.001, Sustain: 1, Release: 0.001},
		BaseCutoff: 5,
		PeakCutoff: 90000,
		Amount:     1,
	}
	if got := fe.Cutoff(0, 1); got < minCutoffHz {
		t.Errorf("Cutoff = %v, want >= %v", got, minCutoffHz)
	}
	if got := fe.Cutoff(0.5, 1); got > maxCutoffHz {
		t.Errorf("Cutoff = %v, want <= %v", got, maxCutoffHz)
	}
}

func TestFilterEnvelope_AmountZero(t *testing.T) {
	t.Parallel()

	fe := FilterEnvelope{
		Env:        DefaultEnvelope(),
		BaseCutoff: 1234,
		PeakCutoff: 8000,
		Amount:     0,
	}
	for _, tm := range []float64{0, 0.5, 2} {
		if got := fe.Cutoff(tm, 1); got != 1234 {
			t.Errorf("Cutoff(%v) = %v, want 1234", tm, got)
		}
	}
}
