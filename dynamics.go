package resound

import "math"

// envFollower smooths a detected level with separate attack and
// release time constants.
type envFollower struct {
	attackCoef  Smp
	releaseCoef Smp
	value       Smp
}

func newEnvFollower(attack, release, sampleRate float64, initial Smp) *envFollower {
	return &envFollower{
		attackCoef:  timeCoef(attack, sampleRate),
		releaseCoef: timeCoef(release, sampleRate),
		value:       initial,
	}
}

// timeCoef converts a time constant in seconds to a one-pole
// coefficient at the given rate.
func timeCoef(seconds, sampleRate float64) Smp {
	if seconds <= 0 || sampleRate <= 0 {
		return 0
	}
	return Smp(math.Exp(-1 / (seconds * sampleRate)))
}

// step moves the follower toward target, fast on the way down
// (attack) and slow on the way back up (release) when tracking gain.
func (e *envFollower) step(target Smp) Smp {
	coef := e.releaseCoef
	if target < e.value {
		coef = e.attackCoef
	}
	e.value = coef*e.value + (1-coef)*target
	return e.value
}

// CompressorSpec reduces gain above the threshold. The gain law works
// in the linear domain: for |in| > threshold the target gain is
// (threshold/|in|)^(1 - 1/ratio), smoothed by attack/release.
type CompressorSpec struct {
	Threshold float64 // linear amplitude, (0,1]
	Ratio     float64 // >= 1
	Attack    float64 // seconds
	Release   float64 // seconds
	Makeup    float64 // linear output gain, default 1
}

func (s CompressorSpec) build(sampleRate float64) Effect {
	thr := clamp(s.Threshold, 1e-4, 1)
	ratio := s.Ratio
	if ratio < 1 {
		ratio = 1
	}
	makeup := s.Makeup
	if makeup <= 0 {
		makeup = 1
	}
	return &compressor{
		threshold: Smp(thr),
		exponent:  1 - 1/ratio,
		makeup:    Smp(makeup),
		follower:  newEnvFollower(s.Attack, s.Release, sampleRate, 1),
	}
}

func (s CompressorSpec) fingerprint(w *fpWriter) {
	w.writeTag("compressor")
	w.writeFloat(s.Threshold)
	w.writeFloat(s.Ratio)
	w.writeFloat(s.Attack)
	w.writeFloat(s.Release)
	w.writeFloat(s.Makeup)
}

type compressor struct {
	threshold Smp
	exponent  float64
	makeup    Smp
	follower  *envFollower
}

func (c *compressor) Process(in Smp) Smp {
	level := math.Abs(in)
	target := Smp(1)
	if level > c.threshold {
		target = Smp(math.Pow(float64(c.threshold)/level, c.exponent))
	}
	gain := c.follower.step(target)
	return in * gain * c.makeup
}

func (c *compressor) Reset() {
	c.follower.value = 1
}

// LimiterSpec is a compressor with infinite ratio and no look-ahead:
// a hard ceiling at the threshold.
type LimiterSpec struct {
	Threshold float64 // linear amplitude, (0,1]
	Release   float64 // seconds; 0 means instant recovery
}

func (s LimiterSpec) build(sampleRate float64) Effect {
	thr := clamp(s.Threshold, 1e-4, 1)
	return &limiter{
		threshold: Smp(thr),
		follower:  newEnvFollower(0, s.Release, sampleRate, 1),
	}
}

func (s LimiterSpec) fingerprint(w *fpWriter) {
	w.writeTag("limiter")
	w.writeFloat(s.Threshold)
	w.writeFloat(s.Release)
}

type limiter struct {
	threshold Smp
	follower  *envFollower
}

func (l *limiter) Process(in Smp) Smp {
	level := math.Abs(in)
	target := Smp(1)
	if level > l.threshold {
		// ratio -> inf makes the exponent 1: gain = threshold/level.
		target = l.threshold / Smp(level)
	}
	gain := l.follower.step(target)
	out := in * gain
	// Zero attack means the ceiling must hold sample-accurately.
	return clamp(out, -float64(l.threshold), float64(l.threshold))
}

func (l *limiter) Reset() {
	l.follower.value = 1
}

// GateSpec attenuates signal below the threshold by the ratio
// (an inverse compressor).
type GateSpec struct {
	Threshold float64 // linear amplitude
	Ratio     float64 // attenuation divisor below threshold, >= 1
	Attack    float64 // seconds, gate opening
	Release   float64 // seconds, gate closing
}

func (s GateSpec) build(sampleRate float64) Effect {
	ratio := s.Ratio
	if ratio < 1 {
		ratio = 1
	}
	return &gate{
		threshold: Smp(clamp(s.Threshold, 0, 1)),
		floor:     Smp(1 / ratio),
		follower:  newEnvFollower(s.Attack, s.Release, sampleRate, 1),
	}
}

func (s GateSpec) fingerprint(w *fpWriter) {
	w.writeTag("gate")
	w.writeFloat(s.Threshold)
	w.writeFloat(s.Ratio)
	w.writeFloat(s.Attack)
	w.writeFloat(s.Release)
}

type gate struct {
	threshold Smp
	floor     Smp
	follower  *envFollower
}

func (g *gate) Process(in Smp) Smp {
	target := g.floor
	if Smp(math.Abs(in)) >= g.threshold {
		target = 1
	}
	gain := g.follower.step(target)
	return in * gain
}

func (g *gate) Reset() {
	g.follower.value = 1
}
