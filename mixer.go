package resound

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Event schedules one voice at a point on the composition timeline,
// optionally with a 3D position.
type Event struct {
	StartTime float64 // seconds, >= 0
	Voice     Voice
	Spatial   *SpatialPosition

	// seq preserves insertion order for same-start ties.
	seq int
}

// Mixer renders an event list into an interleaved stereo buffer.
// Events are rendered in non-decreasing start time; ties keep
// insertion order.
type Mixer struct {
	sampleRate int
	events     []Event
	listener   ListenerConfig
	spatial    SpatialParams
	master     []EffectSpec
	softClip   SoftClipMode
	cache      *SampleCache
	useCache   bool
	workers    int
	stop       atomic.Bool
}

// NewMixer builds a mixer at the given sample rate with caching
// enabled under the default policy.
func NewMixer(sampleRate int) (*Mixer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, sampleRate)
	}
	return &Mixer{
		sampleRate: sampleRate,
		listener:   DefaultListener(),
		spatial:    DefaultSpatialParams(),
		cache:      NewSampleCache(DefaultCachePolicy()),
		useCache:   true,
		workers:    runtime.GOMAXPROCS(0),
	}, nil
}

// SampleRate returns the rate the mixer renders at.
func (m *Mixer) SampleRate() int { return m.sampleRate }

// AddEvent validates and appends an event.
func (m *Mixer) AddEvent(ev Event) error {
	if !isFinite(ev.StartTime) || ev.StartTime < 0 {
		return fmt.Errorf("%w: event start time %v", ErrInvalidParameter, ev.StartTime)
	}
	if err := ev.Voice.Validate(); err != nil {
		return err
	}
	ev.seq = len(m.events)
	m.events = append(m.events, ev)
	return nil
}

// ClearEvents drops the event list; the cache keeps its entries.
func (m *Mixer) ClearEvents() {
	m.events = nil
}

// EnableCache turns fingerprint caching back on.
func (m *Mixer) EnableCache() { m.useCache = true }

// DisableCache makes every event synthesize from scratch.
func (m *Mixer) DisableCache() { m.useCache = false }

// SetCache replaces the sample cache, e.g. to share one across mixers
// or apply a custom policy.
func (m *Mixer) SetCache(c *SampleCache) {
	if c != nil {
		m.cache = c
	}
}

// CacheStats returns a snapshot of the cache counters.
func (m *Mixer) CacheStats() CacheStats {
	return m.cache.Stats()
}

// SetListener positions the listener for spatialized events.
func (m *Mixer) SetListener(cfg ListenerConfig) {
	m.listener = cfg
}

// SetSpatialParams validates and applies attenuation/doppler settings.
func (m *Mixer) SetSpatialParams(p SpatialParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.spatial = p
	return nil
}

// SetMasterEffects installs the master-bus chain applied after
// summation.
func (m *Mixer) SetMasterEffects(specs ...EffectSpec) error {
	if err := validateEffectSpecs(specs); err != nil {
		return err
	}
	m.master = specs
	return nil
}

// SetSoftClip selects the final waveshaper; default is tanh.
func (m *Mixer) SetSoftClip(mode SoftClipMode) {
	m.softClip = mode
}

// SetWorkers bounds the synthesis worker pool; values < 1 reset it to
// GOMAXPROCS.
func (m *Mixer) SetWorkers(n int) {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	m.workers = n
}

// Stop requests cancellation. The flag is polled once per event block,
// not per sample; the render returns the prefix summed so far with
// silence for the remainder.
func (m *Mixer) Stop() {
	m.stop.Store(true)
}

// TotalDuration is the timeline length in seconds including release
// tails.
func (m *Mixer) TotalDuration() float64 {
	var total float64
	for i := range m.events {
		end := m.events[i].StartTime + m.events[i].Voice.TotalDuration()
		if end > total {
			total = end
		}
	}
	return total
}

// sortedEvents returns the schedule in non-decreasing start time with
// insertion order breaking ties.
func (m *Mixer) sortedEvents() []Event {
	events := append([]Event(nil), m.events...)
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].StartTime != events[j].StartTime {
			return events[i].StartTime < events[j].StartTime
		}
		return events[i].seq < events[j].seq
	})
	return events
}

// voiceBuffer returns the mono buffer and reference frequency for an
// event, consulting the cache when enabled. prefetched holds buffers
// synthesized ahead of time by the worker pool; they only enter the
// cache here, on the first counted miss.
func (m *Mixer) voiceBuffer(v *Voice, prefetched map[CacheKey][]float32) ([]float32, float64) {
	if !m.useCache {
		return renderVoice(v, m.sampleRate), v.Freq
	}
	key := v.Fingerprint()
	if cached, ok := m.cache.Get(key); ok {
		return cached.Data, cached.ReferenceFreq
	}
	buf, ok := prefetched[key]
	if !ok {
		buf = renderVoice(v, m.sampleRate)
	}
	m.insertCached(key, v, buf)
	return buf, v.Freq
}

func (m *Mixer) insertCached(key CacheKey, v *Voice, buf []float32) {
	err := m.cache.Insert(key, &CachedSample{
		Data:          buf,
		SampleRate:    m.sampleRate,
		Duration:      v.TotalDuration(),
		ReferenceFreq: v.Freq,
	})
	if err != nil {
		// Cache full: keep rendering without caching this voice.
		logger.Warn("sample cache insert failed", "err", err)
	}
}

// prefetch synthesizes upcoming cache misses on the worker pool, at
// most once per fingerprint, into a private map. The counted cache
// lookups happen later in the serial sum loop, so hit/miss statistics
// are identical to a sequential render.
func (m *Mixer) prefetch(events []Event) map[CacheKey][]float32 {
	if !m.useCache || len(events) == 0 || m.workers < 2 {
		return nil
	}
	type missEntry struct {
		key   CacheKey
		voice *Voice
	}
	var misses []missEntry
	seen := make(map[CacheKey]bool)
	for i := range events {
		v := &events[i].Voice
		key := v.Fingerprint()
		if seen[key] {
			continue
		}
		seen[key] = true
		if !m.cache.contains(key) {
			misses = append(misses, missEntry{key: key, voice: v})
		}
	}
	if len(misses) == 0 {
		return nil
	}
	logger.Debug("prefetching voices", "count", len(misses), "workers", m.workers)
	prefetched := make(map[CacheKey][]float32, len(misses))
	buffers := make([][]float32, len(misses))
	var g errgroup.Group
	g.SetLimit(m.workers)
	for i, miss := range misses {
		i, miss := i, miss
		g.Go(func() error {
			if m.stop.Load() {
				return nil
			}
			buffers[i] = renderVoice(miss.voice, m.sampleRate)
			return nil
		})
	}
	// Workers only synthesize; they cannot fail the render.
	_ = g.Wait()
	for i, miss := range misses {
		if buffers[i] != nil {
			prefetched[miss.key] = buffers[i]
		}
	}
	return prefetched
}

// Render produces the whole composition as an interleaved stereo
// float32 buffer (L, R, L, R, ...), soft-clipped to [-1, 1]. On Stop
// the prefix rendered so far is returned with ErrRenderAborted.
func (m *Mixer) Render() ([]float32, error) {
	m.stop.Store(false)
	events := m.sortedEvents()
	totalFrames := int(math.Ceil(m.TotalDuration() * float64(m.sampleRate)))
	out := make([]float32, totalFrames*2)
	if len(events) == 0 {
		return out, nil
	}

	prefetched := m.prefetch(events)

	aborted := false
	for i := range events {
		if m.stop.Load() {
			aborted = true
			break
		}
		m.mixEvent(&events[i], out, prefetched)
	}

	m.finishMix(out)
	if aborted {
		return out, ErrRenderAborted
	}
	return out, nil
}

// mixEvent sums one event into the interleaved output.
func (m *Mixer) mixEvent(ev *Event, out []float32, prefetched map[CacheKey][]float32) {
	v := &ev.Voice
	buf, refFreq := m.voiceBuffer(v, prefetched)

	sp := spatialResult{volume: 1, pan: v.Pan, pitchShift: 1}
	if ev.Spatial != nil {
		sp = spatialize(*ev.Spatial, m.listener, m.spatial)
	}

	ratio := sp.pitchShift
	if refFreq > 0 {
		ratio *= v.Freq / refFreq
	}
	reader, err := newPlaybackReader(buf, ratio)
	if err != nil {
		// Extreme ratio: clamp and keep going rather than dropping the
		// event.
		clamped := clamp(ratio, resampleMinRatio, resampleMaxRatio)
		logger.Warn("resample ratio clamped", "ratio", ratio, "clamped", clamped)
		reader, _ = newPlaybackReader(buf, clamped)
	}

	gl, gr := equalPowerPan(sp.pan)
	gainL := float32(sp.volume * gl)
	gainR := float32(sp.volume * gr)
	if gainL == 0 && gainR == 0 {
		return
	}

	startFrame := int(math.Round(ev.StartTime * float64(m.sampleRate)))
	frames := v.NumSamples(m.sampleRate)
	maxFrames := len(out)/2 - startFrame
	if frames > maxFrames {
		frames = maxFrames
	}
	for j := 0; j < frames; j++ {
		s := reader.at(j)
		if s == 0 {
			continue
		}
		idx := (startFrame + j) * 2
		out[idx] += s * gainL
		out[idx+1] += s * gainR
	}
}

// finishMix applies the master chain and the soft clipper. Non-finite
// samples are replaced by silence.
func (m *Mixer) finishMix(out []float32) {
	if len(m.master) > 0 {
		chain := buildStereoChain(m.master, float64(m.sampleRate))
		for i := 0; i+1 < len(out); i += 2 {
			l, r := Smp(out[i]), Smp(out[i+1])
			for _, fx := range chain {
				l, r = fx.ProcessStereo(l, r)
			}
			out[i], out[i+1] = float32(l), float32(r)
		}
	}
	shape := softClipFunc(m.softClip)
	processBuffer(out, func(x float32) float32 {
		if !isFinite(float64(x)) {
			return 0
		}
		return float32(shape(Smp(x)))
	})
}
