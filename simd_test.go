package resound

import (
	"math"
	"testing"
)

func TestDetectLanes(t *testing.T) {
	t.Parallel()

	switch laneWidth {
	case 1, 4, 8:
	default:
		t.Errorf("laneWidth = %d, want 1, 4 or 8", laneWidth)
	}
}

func TestProcessBuffer_MatchesScalar(t *testing.T) {
	t.Parallel()

	fn := func(v float32) float32 { return v*2 + 1 }
	// odd lengths force the remainder loop
	for _, n := range []int{0, 1, 3, 4, 7, 8, 9, 100, 1023} {
		buf := make([]float32, n)
		want := make([]float32, n)
		for i := range buf {
			buf[i] = float32(i) * 0.25
			want[i] = fn(buf[i])
		}
		processBuffer(buf, fn)
		for i := range buf {
			if buf[i] != want[i] {
				t.Fatalf("n=%d: buf[%d] = %v, want %v", n, i, buf[i], want[i])
			}
		}
	}
}

func TestScaleBuffer(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 5, 8, 13} {
		buf := make([]float32, n)
		for i := range buf {
			buf[i] = 1
		}
		scaleBuffer(buf, 0.5)
		for i := range buf {
			if buf[i] != 0.5 {
				t.Fatalf("n=%d: buf[%d] = %v, want 0.5", n, i, buf[i])
			}
		}
	}
}

func TestAccumulateScaled(t *testing.T) {
	t.Parallel()

	dst := []float32{1, 1, 1, 1, 1}
	src := []float32{1, 2, 3, 4, 5}
	accumulateScaled(dst, src, 2)
	want := []float32{3, 5, 7, 9, 11}
	for i := range dst {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestAccumulateScaled_LengthMismatch(t *testing.T) {
	t.Parallel()

	dst := []float32{0, 0}
	accumulateScaled(dst, []float32{1, 1, 1, 1}, 1)
	if dst[0] != 1 || dst[1] != 1 {
		t.Errorf("dst = %v, want [1 1]", dst)
	}

	dst2 := []float32{0, 0, 0, 0}
	accumulateScaled(dst2, []float32{1}, 1)
	if dst2[0] != 1 || dst2[1] != 0 {
		t.Errorf("dst2 = %v, want [1 0 0 0]", dst2)
	}
}

func TestSoftClipModes_BoundedAndMonotonic(t *testing.T) {
	t.Parallel()

	modes := map[string]SoftClipMode{
		"tanh":     SoftClipTanh,
		"atan":     SoftClipAtan,
		"cubic":    SoftClipCubic,
		"softsign": SoftClipSoftsign,
	}
	for name, mode := range modes {
		t.Run(name, func(t *testing.T) {
			fn := softClipFunc(mode)
			prev := math.Inf(-1)
			for x := -10.0; x <= 10.0; x += 0.1 {
				y := fn(x)
				if math.Abs(y) > 1 {
					t.Fatalf("%s(%v) = %v, |y| > 1", name, x, y)
				}
				if y < prev-1e-12 {
					t.Fatalf("%s not monotonic at %v", name, x)
				}
				prev = y
			}
			if fn(0) != 0 {
				t.Errorf("%s(0) = %v, want 0", name, fn(0))
			}
		})
	}
}

func TestConversionHelpers(t *testing.T) {
	t.Parallel()

	if got := semitonesToRatio(12); math.Abs(got-2) > 1e-12 {
		t.Errorf("semitonesToRatio(12) = %v, want 2", got)
	}
	if got := semitonesToRatio(-12); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("semitonesToRatio(-12) = %v, want 0.5", got)
	}
	if got := centsToRatio(1200); math.Abs(got-2) > 1e-12 {
		t.Errorf("centsToRatio(1200) = %v, want 2", got)
	}
	if got := dbToLinear(0); got != 1 {
		t.Errorf("dbToLinear(0) = %v, want 1", got)
	}
	if got := dbToLinear(-20); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("dbToLinear(-20) = %v, want 0.1", got)
	}
	if got := linearToDb(1); got != 0 {
		t.Errorf("linearToDb(1) = %v, want 0", got)
	}
	if got := linearToDb(0); !math.IsInf(got, -1) {
		t.Errorf("linearToDb(0) = %v, want -inf", got)
	}
}
