package resound

import "math"

// ChorusSpec mixes N delay lines modulated by sine LFOs with the dry
// signal. Depth is kept small (<= 10 ms) so the detuning stays subtle.
type ChorusSpec struct {
	Rate    float64 // LFO Hz
	DepthMs float64 // modulation depth, clamped to 10 ms
	Voices  int     // delay line count, default 3
	Mix     float64 // [0,1]
}

func (s ChorusSpec) build(sampleRate float64) Effect {
	voices := s.Voices
	if voices < 1 {
		voices = 3
	}
	depth := clamp(s.DepthMs, 0, 10) / 1000 * sampleRate
	base := 20.0 / 1000 * sampleRate
	ch := &chorus{
		depth: depth,
		base:  base,
		mix:   Smp(clamp(s.Mix, 0, 1)),
	}
	n := int(base + depth + 4)
	for i := 0; i < voices; i++ {
		ch.lines = append(ch.lines, newFracDelayLine(n))
		// Spread LFO phases so the voices drift apart.
		ch.lfos = append(ch.lfos, newLFO(s.Rate, sampleRate, Smp(i)/Smp(voices)))
	}
	return ch
}

func (s ChorusSpec) fingerprint(w *fpWriter) {
	w.writeTag("chorus")
	w.writeFloat(s.Rate)
	w.writeFloat(s.DepthMs)
	w.writeInt(s.Voices)
	w.writeFloat(s.Mix)
}

type chorus struct {
	lines []*fracDelayLine
	lfos  []*lfo
	depth float64
	base  float64
	mix   Smp
}

func (c *chorus) Process(in Smp) Smp {
	var wet Smp
	for i, line := range c.lines {
		d := c.base + c.depth*0.5*(1+float64(c.lfos[i].next()))
		wet += line.read(d)
		line.write(in)
	}
	wet /= Smp(len(c.lines))
	return (1-c.mix)*in + c.mix*wet
}

func (c *chorus) Reset() {
	for i, line := range c.lines {
		line.reset()
		c.lfos[i].phase = Smp(i) / Smp(len(c.lines))
	}
}

// FlangerSpec is a single short modulated delay with feedback.
type FlangerSpec struct {
	Rate     float64 // LFO Hz
	DepthMs  float64 // sweep depth, clamped to 5 ms
	Feedback float64 // (-1,1)
	Mix      float64 // [0,1]
}

func (s FlangerSpec) build(sampleRate float64) Effect {
	depth := clamp(s.DepthMs, 0, 5) / 1000 * sampleRate
	base := 1.0 / 1000 * sampleRate
	return &flanger{
		line:     newFracDelayLine(int(base + depth + 4)),
		lfo:      newLFO(s.Rate, sampleRate, 0),
		base:     base,
		depth:    depth,
		feedback: Smp(clamp(s.Feedback, -0.95, 0.95)),
		mix:      Smp(clamp(s.Mix, 0, 1)),
	}
}

func (s FlangerSpec) fingerprint(w *fpWriter) {
	w.writeTag("flanger")
	w.writeFloat(s.Rate)
	w.writeFloat(s.DepthMs)
	w.writeFloat(s.Feedback)
	w.writeFloat(s.Mix)
}

type flanger struct {
	line     *fracDelayLine
	lfo      *lfo
	base     float64
	depth    float64
	feedback Smp
	mix      Smp
}

func (f *flanger) Process(in Smp) Smp {
	d := f.base + f.depth*0.5*(1+float64(f.lfo.next()))
	delayed := f.line.read(d)
	f.line.write(in + f.feedback*delayed)
	return (1-f.mix)*in + f.mix*delayed
}

func (f *flanger) Reset() {
	f.line.reset()
	f.lfo.phase = 0
}

// PhaserSpec chains first-order allpasses whose center frequency is
// swept by an LFO.
type PhaserSpec struct {
	Rate     float64 // LFO Hz
	MinFreq  float64 // sweep floor Hz
	MaxFreq  float64 // sweep ceiling Hz
	Stages   int     // allpass count, default 4
	Feedback float64 // (-1,1)
	Mix      float64 // [0,1]
}

func (s PhaserSpec) build(sampleRate float64) Effect {
	stages := s.Stages
	if stages < 1 {
		stages = 4
	}
	minf := s.MinFreq
	if minf <= 0 {
		minf = 200
	}
	maxf := s.MaxFreq
	if maxf <= minf {
		maxf = minf * 8
	}
	return &phaser{
		states:   make([]Smp, stages),
		lfo:      newLFO(s.Rate, sampleRate, 0),
		minFreq:  minf,
		maxFreq:  clamp(maxf, minf, sampleRate/2*0.95),
		feedback: Smp(clamp(s.Feedback, -0.95, 0.95)),
		mix:      Smp(clamp(s.Mix, 0, 1)),
		sr:       sampleRate,
	}
}

func (s PhaserSpec) fingerprint(w *fpWriter) {
	w.writeTag("phaser")
	w.writeFloat(s.Rate)
	w.writeFloat(s.MinFreq)
	w.writeFloat(s.MaxFreq)
	w.writeInt(s.Stages)
	w.writeFloat(s.Feedback)
	w.writeFloat(s.Mix)
}

type phaser struct {
	states   []Smp
	lfo      *lfo
	last     Smp
	minFreq  float64
	maxFreq  float64
	feedback Smp
	mix      Smp
	sr       float64
}

func (p *phaser) Process(in Smp) Smp {
	// Sweep center frequency exponentially between min and max.
	x := 0.5 + 0.5*float64(p.lfo.next())
	freq := p.minFreq * math.Pow(p.maxFreq/p.minFreq, x)
	// First-order allpass coefficient.
	t := math.Tan(math.Pi * freq / p.sr)
	a := Smp((t - 1) / (t + 1))

	y := in + p.feedback*p.last
	for i := range p.states {
		out := a*y + p.states[i]
		p.states[i] = y - a*out
		y = out
	}
	p.last = y
	return (1-p.mix)*in + p.mix*y
}

func (p *phaser) Reset() {
	for i := range p.states {
		p.states[i] = 0
	}
	p.last = 0
	p.lfo.phase = 0
}
