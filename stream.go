package resound

import (
	"encoding/binary"
	"io"
	"math"
)

// defaultChunkFrames is the block size of the streaming renderer. The
// stop flag is polled at this granularity.
const defaultChunkFrames = 4096

// RenderStream pulls the mix in chunks instead of rendering the whole
// buffer up front. Voices are activated as the cursor reaches their
// start time; the master chain and soft clipper run per chunk with
// state carried across chunks.
type RenderStream struct {
	m           *Mixer
	events      []Event
	nextEvent   int
	active      []*streamVoice
	master      []StereoEffect
	shape       func(Smp) Smp
	frame       int
	totalFrames int
	stopped     bool

	// byte-level state for the io.Reader view
	pending []byte
}

type streamVoice struct {
	reader     *playbackReader
	startFrame int
	frames     int
	gainL      float32
	gainR      float32
}

// Stream returns a streaming renderer over the mixer's current event
// list. The mixer should not be modified while the stream is live.
func (m *Mixer) Stream() *RenderStream {
	m.stop.Store(false)
	return &RenderStream{
		m:           m,
		events:      m.sortedEvents(),
		master:      buildStereoChain(m.master, float64(m.sampleRate)),
		shape:       softClipFunc(m.softClip),
		totalFrames: int(math.Ceil(m.TotalDuration() * float64(m.sampleRate))),
	}
}

// TotalFrames is the stream length in stereo frames.
func (s *RenderStream) TotalFrames() int { return s.totalFrames }

// activateVoices starts every event whose start frame falls inside
// [s.frame, end).
func (s *RenderStream) activateVoices(end int) {
	for s.nextEvent < len(s.events) {
		ev := &s.events[s.nextEvent]
		startFrame := int(math.Round(ev.StartTime * float64(s.m.sampleRate)))
		if startFrame >= end {
			return
		}
		s.nextEvent++

		v := &ev.Voice
		buf, refFreq := s.m.voiceBuffer(v, nil)

		sp := spatialResult{volume: 1, pan: v.Pan, pitchShift: 1}
		if ev.Spatial != nil {
			sp = spatialize(*ev.Spatial, s.m.listener, s.m.spatial)
		}
		ratio := sp.pitchShift
		if refFreq > 0 {
			ratio *= v.Freq / refFreq
		}
		reader, err := newPlaybackReader(buf, ratio)
		if err != nil {
			clamped := clamp(ratio, resampleMinRatio, resampleMaxRatio)
			logger.Warn("resample ratio clamped", "ratio", ratio, "clamped", clamped)
			reader, _ = newPlaybackReader(buf, clamped)
		}
		gl, gr := equalPowerPan(sp.pan)
		s.active = append(s.active, &streamVoice{
			reader:     reader,
			startFrame: startFrame,
			frames:     v.NumSamples(s.m.sampleRate),
			gainL:      float32(sp.volume * gl),
			gainR:      float32(sp.volume * gr),
		})
	}
}

// ReadSamples fills dst (interleaved stereo, even length) and returns
// the number of float32 values written. io.EOF signals the end of the
// composition. After Stop the remainder is silence.
func (s *RenderStream) ReadSamples(dst []float32) (int, error) {
	if s.frame >= s.totalFrames {
		return 0, io.EOF
	}
	frames := len(dst) / 2
	if remaining := s.totalFrames - s.frame; frames > remaining {
		frames = remaining
	}
	if frames == 0 {
		return 0, nil
	}
	n := frames * 2
	for i := 0; i < n; i++ {
		dst[i] = 0
	}

	if s.m.stop.Load() {
		s.stopped = true
	}
	if !s.stopped {
		end := s.frame + frames
		s.activateVoices(end)

		kept := s.active[:0]
		for _, voice := range s.active {
			voiceEnd := voice.startFrame + voice.frames
			lo := s.frame
			if voice.startFrame > lo {
				lo = voice.startFrame
			}
			hi := end
			if voiceEnd < hi {
				hi = voiceEnd
			}
			for f := lo; f < hi; f++ {
				smp := voice.reader.at(f - voice.startFrame)
				if smp != 0 {
					idx := (f - s.frame) * 2
					dst[idx] += smp * voice.gainL
					dst[idx+1] += smp * voice.gainR
				}
			}
			if voiceEnd > end {
				kept = append(kept, voice)
			}
		}
		s.active = kept
	}

	for i := 0; i+1 < n; i += 2 {
		l, r := Smp(dst[i]), Smp(dst[i+1])
		for _, fx := range s.master {
			l, r = fx.ProcessStereo(l, r)
		}
		if !isFinite(l) {
			l = 0
		}
		if !isFinite(r) {
			r = 0
		}
		dst[i] = float32(s.shape(l))
		dst[i+1] = float32(s.shape(r))
	}

	s.frame += frames
	return n, nil
}

// Read implements io.Reader, emitting samples as little-endian float32
// bytes. This is the format the playback backend consumes.
func (s *RenderStream) Read(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		if len(s.pending) == 0 {
			chunk := make([]float32, defaultChunkFrames*2)
			n, err := s.ReadSamples(chunk)
			if n == 0 {
				if written > 0 {
					return written, nil
				}
				return 0, err
			}
			s.pending = make([]byte, n*4)
			for i := 0; i < n; i++ {
				binary.LittleEndian.PutUint32(s.pending[i*4:], math.Float32bits(chunk[i]))
			}
		}
		n := copy(p[written:], s.pending)
		s.pending = s.pending[n:]
		written += n
	}
	return written, nil
}
