package resound

// Schroeder reverb: four parallel feedback combs with damped feedback
// paths into two series allpasses. Comb delays follow the classic
// mutually-prime tunings, scaled by room size.

// Comb delays in milliseconds at room size 1.
var reverbCombDelaysMs = [4]float64{29.7, 37.1, 41.1, 43.7}

// Allpass delays in milliseconds.
var reverbAllpassDelaysMs = [2]float64{5.0, 1.7}

const reverbAllpassFeedback = 0.5

// ReverbSpec configures the Schroeder reverb.
type ReverbSpec struct {
	RoomSize float64 // comb delay scale, (0,2]; 1 is the reference room
	Damping  float64 // [0,1] high-frequency loss in the comb feedback
	Mix      float64 // [0,1] wet amount
}

func (s ReverbSpec) build(sampleRate float64) Effect {
	room := clamp(s.RoomSize, 0.1, 2)
	damp := clamp(s.Damping, 0, 1)
	rv := &reverb{
		mix:      Smp(clamp(s.Mix, 0, 1)),
		feedback: 0.84,
	}
	for i, ms := range reverbCombDelaysMs {
		n := int(ms / 1000 * room * sampleRate)
		if n < 1 {
			n = 1
		}
		rv.combs[i] = &dampedComb{buf: make([]Smp, n), damp: Smp(damp)}
	}
	for i, ms := range reverbAllpassDelaysMs {
		n := int(ms / 1000 * sampleRate)
		if n < 1 {
			n = 1
		}
		rv.allpasses[i] = &allpass{buf: make([]Smp, n), feedback: reverbAllpassFeedback}
	}
	return rv
}

func (s ReverbSpec) fingerprint(w *fpWriter) {
	w.writeTag("reverb")
	w.writeFloat(s.RoomSize)
	w.writeFloat(s.Damping)
	w.writeFloat(s.Mix)
}

// dampedComb is a feedback comb with a one-pole lowpass in the
// feedback path.
type dampedComb struct {
	buf   []Smp
	pos   int
	damp  Smp
	store Smp
}

func (c *dampedComb) process(in Smp, feedback Smp) Smp {
	out := c.buf[c.pos]
	c.store = out*(1-c.damp) + c.store*c.damp
	c.buf[c.pos] = in + c.store*feedback
	c.pos++
	if c.pos == len(c.buf) {
		c.pos = 0
	}
	return out
}

func (c *dampedComb) reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
	c.store = 0
}

// allpass is a Schroeder allpass diffuser.
type allpass struct {
	buf      []Smp
	pos      int
	feedback Smp
}

func (a *allpass) process(in Smp) Smp {
	bufout := a.buf[a.pos]
	out := -in + bufout
	a.buf[a.pos] = in + bufout*a.feedback
	a.pos++
	if a.pos == len(a.buf) {
		a.pos = 0
	}
	return out
}

func (a *allpass) reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.pos = 0
}

type reverb struct {
	combs     [4]*dampedComb
	allpasses [2]*allpass
	feedback  Smp
	mix       Smp
}

func (r *reverb) Process(in Smp) Smp {
	var wet Smp
	for _, c := range r.combs {
		wet += c.process(in, r.feedback)
	}
	wet /= Smp(len(r.combs))
	for _, a := range r.allpasses {
		wet = a.process(wet)
	}
	return (1-r.mix)*in + r.mix*wet
}

func (r *reverb) Reset() {
	for _, c := range r.combs {
		c.reset()
	}
	for _, a := range r.allpasses {
		a.reset()
	}
}
