package resound

import (
	"container/list"
	"fmt"
	"sync"
)

// DefaultMaxCacheBytes is the default cache budget (500 MiB).
const DefaultMaxCacheBytes = 500 << 20

// DefaultMinCacheableDuration is the shortest voice worth caching;
// the renderer amortizes little from shorter ones.
const DefaultMinCacheableDuration = 0.1

// CachedSample is a pre-rendered mono voice at its reference pitch.
// The buffer is shared and immutable; consumers resample from
// ReferenceFreq and must not write through Data.
type CachedSample struct {
	Data          []float32
	SampleRate    int
	Duration      float64 // seconds including the release tail
	ReferenceFreq float64 // carrier frequency at synthesis time
}

// Bytes is the buffer's size in bytes.
func (cs *CachedSample) Bytes() int64 {
	return int64(len(cs.Data)) * 4
}

// CachePolicy bounds the sample cache.
type CachePolicy struct {
	MaxSizeBytes         int64
	MinCacheableDuration float64
}

// DefaultCachePolicy returns the 500 MiB / 100 ms policy.
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{
		MaxSizeBytes:         DefaultMaxCacheBytes,
		MinCacheableDuration: DefaultMinCacheableDuration,
	}
}

// WithMaxSize returns a copy of the policy with a new byte budget.
func (p CachePolicy) WithMaxSize(bytes int64) CachePolicy {
	p.MaxSizeBytes = bytes
	return p
}

// WithMinDuration returns a copy of the policy with a new caching
// threshold in seconds.
func (p CachePolicy) WithMinDuration(seconds float64) CachePolicy {
	p.MinCacheableDuration = seconds
	return p
}

// CacheStats is a snapshot of the cache counters.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Skipped   uint64 // voices below the duration threshold or refused for size
	Entries   int
	SizeBytes int64
}

// HitRate returns hits/(hits+misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type cacheEntry struct {
	key    CacheKey
	sample *CachedSample
}

// SampleCache maps voice fingerprints to rendered buffers with LRU
// eviction. One lock serializes map, queue and size; returned buffers
// are shared and immutable so callers never hold the lock during
// playback.
type SampleCache struct {
	mu     sync.Mutex
	policy CachePolicy
	// lru front is most recently used.
	lru     *list.List
	entries map[CacheKey]*list.Element
	size    int64
	stats   CacheStats
}

// NewSampleCache builds a cache with the given policy.
func NewSampleCache(policy CachePolicy) *SampleCache {
	if policy.MaxSizeBytes <= 0 {
		policy.MaxSizeBytes = DefaultMaxCacheBytes
	}
	if policy.MinCacheableDuration < 0 {
		policy.MinCacheableDuration = 0
	}
	return &SampleCache{
		policy:  policy,
		lru:     list.New(),
		entries: make(map[CacheKey]*list.Element),
	}
}

// Get returns the cached buffer for key and marks it most recently
// used. Hit/miss counters update on every call.
func (c *SampleCache) Get(key CacheKey) (*CachedSample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		c.stats.Hits++
		return elem.Value.(*cacheEntry).sample, true
	}
	c.stats.Misses++
	return nil, false
}

// contains reports residency without touching recency or the hit/miss
// counters; used by the mixer's prefetch planner.
func (c *SampleCache) contains(key CacheKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Insert stores sample under key, evicting least recently used entries
// until it fits. Inserting an existing key replaces the old entry.
// Voices below the duration threshold are skipped; a sample that
// cannot fit even into an empty cache returns ErrCacheFull.
func (c *SampleCache) Insert(key CacheKey, sample *CachedSample) error {
	if sample == nil {
		return fmt.Errorf("%w: nil sample", ErrInvalidParameter)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if sample.Duration < c.policy.MinCacheableDuration {
		c.stats.Skipped++
		return nil
	}

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}

	bytes := sample.Bytes()
	if bytes > c.policy.MaxSizeBytes {
		c.stats.Skipped++
		return fmt.Errorf("%w: sample of %d bytes exceeds cache budget %d",
			ErrCacheFull, bytes, c.policy.MaxSizeBytes)
	}

	// Eviction is bounded by the current queue length.
	for c.size+bytes > c.policy.MaxSizeBytes {
		back := c.lru.Back()
		if back == nil {
			break
		}
		c.removeLocked(back)
		c.stats.Evictions++
	}

	elem := c.lru.PushFront(&cacheEntry{key: key, sample: sample})
	c.entries[key] = elem
	c.size += bytes
	logger.Debug("cache insert", "key", key, "bytes", bytes, "size", c.size)
	return nil
}

func (c *SampleCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.entries, entry.key)
	c.size -= entry.sample.Bytes()
}

// Clear drops every entry and resets the size counter. Hit/miss
// counters survive; use a fresh cache to reset them.
func (c *SampleCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Init()
	c.entries = make(map[CacheKey]*list.Element)
	c.size = 0
}

// Len returns the number of resident entries.
func (c *SampleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SizeBytes returns the tracked total size of resident buffers.
func (c *SampleCache) SizeBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns a snapshot of the counters.
func (c *SampleCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.stats
	stats.Entries = len(c.entries)
	stats.SizeBytes = c.size
	return stats
}
