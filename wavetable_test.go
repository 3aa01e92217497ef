package resound

import (
	"errors"
	"math"
	"testing"
)

func TestSineWave_Shape(t *testing.T) {
	t.Parallel()

	w := sineWave(8)
	if len(w) != 8 {
		t.Fatalf("len = %d, want 8", len(w))
	}
	if math.Abs(float64(w[0])) > 1e-12 {
		t.Errorf("w[0] = %v, want 0", w[0])
	}
	if math.Abs(float64(w[2]-1)) > 1e-12 {
		t.Errorf("w[2] = %v, want 1", w[2])
	}
	if math.Abs(float64(w[6]+1)) > 1e-12 {
		t.Errorf("w[6] = %v, want -1", w[6])
	}
}

func TestWave_SampleAt_Interpolates(t *testing.T) {
	t.Parallel()

	w := Wave{0, 1, 0, -1}
	got := w.sampleAt(0.125) // halfway between index 0 and 1
	if math.Abs(float64(got-0.5)) > 1e-12 {
		t.Errorf("sampleAt(0.125) = %v, want 0.5", got)
	}
	// phase wraps
	if got := w.sampleAt(1.125); math.Abs(float64(got-0.5)) > 1e-12 {
		t.Errorf("sampleAt(1.125) = %v, want 0.5", got)
	}
	if got := w.sampleAt(-0.875); math.Abs(float64(got-0.5)) > 1e-12 {
		t.Errorf("sampleAt(-0.875) = %v, want 0.5", got)
	}
}

func TestBandlimitedWaves_Normalized(t *testing.T) {
	t.Parallel()

	waves := map[string]Wave{
		"saw":      bandlimitedSawWave(DefaultWaveSize),
		"square":   bandlimitedSquareWave(DefaultWaveSize),
		"triangle": bandlimitedTriangleWave(DefaultWaveSize),
	}
	for name, w := range waves {
		var peak Smp
		for _, s := range w {
			if a := Smp(math.Abs(float64(s))); a > peak {
				peak = a
			}
		}
		if math.Abs(float64(peak-1)) > 1e-9 {
			t.Errorf("%s peak = %v, want 1", name, peak)
		}
	}
}

func TestNewWavetable_RejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		wave Wave
	}{
		{"empty", Wave{}},
		{"not power of two", make(Wave, 100)},
		{"non-finite", Wave{0, Smp(math.NaN()), 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newWavetable(tt.wave, 0); !errors.Is(err, ErrInvalidWavetable) {
				t.Errorf("err = %v, want ErrInvalidWavetable", err)
			}
		})
	}
}

func TestNewWavetable_MipChain(t *testing.T) {
	t.Parallel()

	wt, err := TableFromSamples(make([]Smp, 1024))
	if err != nil {
		t.Fatalf("TableFromSamples() error = %v", err)
	}
	// levels halve down to the minimum size
	want := 1
	for n := 1024; n > minMipSize; n /= 2 {
		want++
	}
	if len(wt.levels) != want {
		t.Errorf("levels = %d, want %d", len(wt.levels), want)
	}
	for i, lvl := range wt.levels {
		if len(lvl) != 1024>>i {
			t.Errorf("level %d size = %d, want %d", i, len(lvl), 1024>>i)
		}
	}
}

func TestWavetable_LevelFor(t *testing.T) {
	t.Parallel()

	wt := SawTable()
	low := wt.levelFor(55, DefaultSampleRate)
	high := wt.levelFor(7040, DefaultSampleRate)
	if low > high {
		t.Errorf("levelFor(55) = %d > levelFor(7040) = %d", low, high)
	}
	if high >= len(wt.levels) {
		t.Errorf("levelFor(7040) = %d out of range (%d levels)", high, len(wt.levels))
	}
}

func TestWavetable_HashStable(t *testing.T) {
	t.Parallel()

	a, err := TableFromSamples([]Smp{0, 1, 0, -1})
	if err != nil {
		t.Fatalf("TableFromSamples() error = %v", err)
	}
	b, err := TableFromSamples([]Smp{0, 1, 0, -1})
	if err != nil {
		t.Fatalf("TableFromSamples() error = %v", err)
	}
	c, err := TableFromSamples([]Smp{0, 0.5, 0, -0.5})
	if err != nil {
		t.Fatalf("TableFromSamples() error = %v", err)
	}
	if a.hash != b.hash {
		t.Errorf("identical content hashes differ: %v vs %v", a.hash, b.hash)
	}
	if a.hash == c.hash {
		t.Errorf("different content produced the same hash %v", a.hash)
	}
}

func TestBuiltinTable_Singletons(t *testing.T) {
	t.Parallel()

	if builtinTable(Sine) != SineTable() {
		t.Error("Sine table is not a singleton")
	}
	if builtinTable(Sawtooth) != SawTable() {
		t.Error("Sawtooth table is not a singleton")
	}
	if builtinTable(Square) != SquareTable() {
		t.Error("Square table is not a singleton")
	}
	if builtinTable(Triangle) != TriangleTable() {
		t.Error("Triangle table is not a singleton")
	}
}

func TestTableFromHarmonics_Fundamental(t *testing.T) {
	t.Parallel()

	wt, err := TableFromHarmonics([]Smp{1})
	if err != nil {
		t.Fatalf("TableFromHarmonics() error = %v", err)
	}
	// single harmonic is a pure sine, peak 1 at phase 0.25
	got := wt.Sample(0.25, 0)
	if math.Abs(float64(got-1)) > 1e-6 {
		t.Errorf("Sample(0.25) = %v, want 1", got)
	}
}

func TestRemoveDC(t *testing.T) {
	t.Parallel()

	w := Wave{1, 2, 3, 4}
	w.removeDCInPlace()
	var sum Smp
	for _, s := range w {
		sum += s
	}
	if math.Abs(float64(sum)) > 1e-12 {
		t.Errorf("mean after DC removal = %v, want 0", sum/4)
	}
}
