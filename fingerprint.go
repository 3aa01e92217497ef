package resound

import "math"

// CacheKey is a 64-bit fingerprint over every audibly significant
// voice parameter. Floats are quantized before hashing so
// near-identical descriptors collapse to the same key.
type CacheKey uint64

// fpQuantum is the rounding quantum applied to floats before hashing.
// Differences below it are considered inaudible.
const fpQuantum = 1e-4

// FNV-1a constants.
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// fpWriter accumulates an FNV-1a hash over canonicalized fields.
type fpWriter struct {
	h uint64
}

func newFpWriter() *fpWriter {
	return &fpWriter{h: fnvOffset64}
}

func (w *fpWriter) writeByte(b byte) {
	w.h ^= uint64(b)
	w.h *= fnvPrime64
}

func (w *fpWriter) writeUint64(v uint64) {
	for i := 0; i < 8; i++ {
		w.writeByte(byte(v))
		v >>= 8
	}
}

func (w *fpWriter) writeInt(v int) {
	w.writeUint64(uint64(int64(v)))
}

func (w *fpWriter) writeBool(v bool) {
	if v {
		w.writeByte(1)
	} else {
		w.writeByte(0)
	}
}

// writeFloat hashes the value rounded to the quantum. Non-finite
// values hash as distinct sentinels so they never alias a real value.
func (w *fpWriter) writeFloat(v float64) {
	if !isFinite(v) {
		w.writeUint64(math.Float64bits(v))
		return
	}
	w.writeUint64(uint64(int64(math.Round(v / fpQuantum))))
}

func (w *fpWriter) writeTag(s string) {
	for i := 0; i < len(s); i++ {
		w.writeByte(s[i])
	}
	w.writeByte(0)
}

func (w *fpWriter) sum() CacheKey {
	return CacheKey(w.h)
}
