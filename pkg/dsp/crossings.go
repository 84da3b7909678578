package dsp

import (
	"errors"
	"sort"
)

// ErrNoCrossings is returned by FindCrossings when no sample exceeds the
// initial-deviation guard (spec InsufficientSignal condition).
var ErrNoCrossings = errors.New("dsp: no sample exceeds min_init_dev guard")

// CrossingOptions configures FindCrossings.
type CrossingOptions struct {
	// MinInitDev is the fraction of max|x| below which leading samples are
	// skipped to avoid false starts. Default 0.1 when zero.
	MinInitDev float64
	// MinDelay discards crossings earlier than this time.
	MinDelay float64
	// RisingFirst, when true, drops a leading crossing whose direction is
	// not rising.
	RisingFirst bool
	// RequireDirection enables the RisingFirst filter; without it the first
	// crossing's direction is not checked.
	RequireDirection bool
}

// FindCrossings scans a waveform for zero-threshold crossings, linearly
// interpolating the crossing time between samples. Exact-zero samples are
// treated as +1 (positive), so a signal that touches zero without changing
// sign does not produce a duplicate crossing.
func FindCrossings(t, x []float64, opts CrossingOptions) ([]float64, error) {
	return findCrossingsAt(t, x, 0, opts)
}

// FindCrossingsDuoBinary runs the scan at both +amplitude/2 and -amplitude/2
// thresholds and merges the sorted results.
func FindCrossingsDuoBinary(t, x []float64, amplitude float64, opts CrossingOptions) ([]float64, error) {
	hi, err := findCrossingsAt(t, x, amplitude/2, opts)
	if err != nil {
		return nil, err
	}
	lo, err := findCrossingsAt(t, x, -amplitude/2, opts)
	if err != nil {
		return nil, err
	}
	merged := append(append([]float64{}, hi...), lo...)
	sort.Float64s(merged)
	return merged, nil
}

func findCrossingsAt(t, x []float64, threshold float64, opts CrossingOptions) ([]float64, error) {
	if len(t) != len(x) || len(t) < 2 {
		return nil, ErrNoCrossings
	}
	minInitDev := opts.MinInitDev
	if minInitDev == 0 {
		minInitDev = 0.1
	}

	maxAbs := 0.0
	for _, v := range x {
		shifted := v - threshold
		if shifted < 0 {
			shifted = -shifted
		}
		if shifted > maxAbs {
			maxAbs = shifted
		}
	}
	guard := minInitDev * maxAbs

	start := 0
	for start < len(x) {
		d := x[start] - threshold
		if d < 0 {
			d = -d
		}
		if d >= guard {
			break
		}
		start++
	}
	if start >= len(x)-1 {
		return nil, ErrNoCrossings
	}

	sign := func(v float64) int {
		if v > 0 {
			return 1
		}
		if v < 0 {
			return -1
		}
		return 1 // exact zero treated as +1
	}

	var out []float64
	prevSign := sign(x[start] - threshold)
	for i := start; i < len(x)-1; i++ {
		a := x[i] - threshold
		b := x[i+1] - threshold
		curSign := sign(a)
		nextSign := sign(b)
		_ = curSign
		if nextSign != prevSign {
			var tc float64
			if a == b {
				tc = t[i]
			} else {
				tc = t[i] + (t[i+1]-t[i])*a/(a-b)
			}
			out = append(out, tc)
			prevSign = nextSign
		}
	}

	if opts.RequireDirection && len(out) > 0 {
		// Direction of the first crossing: rising iff signal goes from
		// below threshold to above it.
		idx := 0
		for idx < len(t)-1 && t[idx] < out[0] {
			idx++
		}
		rising := x[idx] >= threshold
		if rising != opts.RisingFirst {
			out = out[1:]
		}
	}

	if opts.MinDelay > 0 {
		filtered := out[:0:0]
		for _, c := range out {
			if c >= opts.MinDelay {
				filtered = append(filtered, c)
			}
		}
		out = filtered
	}

	if len(out) == 0 {
		return nil, ErrNoCrossings
	}
	return out, nil
}
