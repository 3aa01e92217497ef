package resound

import "errors"

var (
	// ErrInvalidParameter reports a non-finite frequency, negative
	// duration or similar bad constructor input. The object is not
	// created.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidWavetable reports an empty table or one containing
	// non-finite values.
	ErrInvalidWavetable = errors.New("invalid wavetable")

	// ErrCacheFull means no room could be made for a new entry. The
	// renderer falls back to synthesizing without caching.
	ErrCacheFull = errors.New("sample cache full")

	// ErrExtremePitchShift reports a pitch shift beyond +/-24 semitones
	// or a resample ratio outside [1/16, 16].
	ErrExtremePitchShift = errors.New("extreme pitch shift")

	// ErrRenderAborted means the stop signal was observed; the output
	// returned alongside it is the valid prefix rendered so far.
	ErrRenderAborted = errors.New("render aborted")
)
