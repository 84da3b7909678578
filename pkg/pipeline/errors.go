package pipeline

import "errors"

// Sentinel errors, checked with errors.Is.
var (
	// ErrConfiguration reports an invalid or internally inconsistent Config
	// value (e.g. Nbits not a multiple of PatternLen).
	ErrConfiguration = errors.New("pipeline: invalid configuration")

	// ErrInsufficientSignal reports a waveform too short or too flat to
	// extract crossings from.
	ErrInsufficientSignal = errors.New("pipeline: insufficient signal for crossing extraction")

	// ErrInsufficientCoverage reports a TIE track too short to cover the
	// requested pattern reshape (jitter Phase 2).
	ErrInsufficientCoverage = errors.New("pipeline: insufficient crossing coverage for jitter decomposition")
)
