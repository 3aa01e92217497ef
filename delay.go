package resound

// maxDelaySeconds bounds the delay line allocation.
const maxDelaySeconds = 4.0

// DelaySpec is a single-tap feedback delay.
type DelaySpec struct {
	Time     float64 // seconds
	Feedback float64 // clamped below 1 so the tail decays
	Mix      float64 // [0,1] wet amount
}

func (s DelaySpec) build(sampleRate float64) Effect {
	t := clamp(s.Time, 0, maxDelaySeconds)
	n := int(t * sampleRate)
	if n < 1 {
		n = 1
	}
	return &delayLine{
		buf:      make([]Smp, n),
		feedback: Smp(clamp(s.Feedback, -0.999, 0.999)),
		mix:      Smp(clamp(s.Mix, 0, 1)),
	}
}

func (s DelaySpec) fingerprint(w *fpWriter) {
	w.writeTag("delay")
	w.writeFloat(s.Time)
	w.writeFloat(s.Feedback)
	w.writeFloat(s.Mix)
}

// delayLine is a circular buffer with the read tap one full length
// behind the write head.
type delayLine struct {
	buf      []Smp
	pos      int
	feedback Smp
	mix      Smp
}

func (d *delayLine) Process(in Smp) Smp {
	delayed := d.buf[d.pos]
	out := (1-d.mix)*in + d.mix*delayed
	d.buf[d.pos] = in + d.feedback*delayed
	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
	return out
}

func (d *delayLine) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}

// fracDelayLine is a circular buffer read at a fractional, possibly
// modulated distance behind the write head. Used by chorus and flanger.
type fracDelayLine struct {
	buf []Smp
	pos int
}

func newFracDelayLine(n int) *fracDelayLine {
	if n < 2 {
		n = 2
	}
	return &fracDelayLine{buf: make([]Smp, n)}
}

// read returns the sample delaySamples behind the write head with
// linear interpolation.
func (d *fracDelayLine) read(delaySamples float64) Smp {
	n := len(d.buf)
	delaySamples = clamp(delaySamples, 1, float64(n-2))
	di := int(delaySamples)
	frac := Smp(delaySamples - float64(di))
	r0 := (d.pos - di + n) % n
	r1 := (r0 - 1 + n) % n
	return d.buf[r0] + frac*(d.buf[r1]-d.buf[r0])
}

func (d *fracDelayLine) write(v Smp) {
	d.buf[d.pos] = v
	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
}

func (d *fracDelayLine) reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}
