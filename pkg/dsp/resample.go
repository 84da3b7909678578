package dsp

import "math"

// MakeUniform resamples an irregular TIE track onto a uniform grid of nbits
// slots, using the per-gap run-length estimate round(diff(t)/UI). ValidIx
// records, for each input sample, the slot it was placed into.
func MakeUniform(vals, t []float64, ui float64, nbits int) (uniform []float64, validIx []int) {
	uniform = make([]float64, nbits)
	validIx = make([]int, len(vals))
	if len(vals) == 0 {
		return uniform, validIx
	}

	pos := 0
	validIx[0] = pos
	if pos < nbits {
		uniform[pos] = vals[0]
	}
	for i := 1; i < len(vals); i++ {
		gap := t[i] - t[i-1]
		run := int(math.Round(gap / ui))
		if run < 1 {
			run = 1
		}
		pos += run
		validIx[i] = pos
		if pos >= 0 && pos < nbits {
			uniform[pos] = vals[i]
		}
	}

	if pos+1 < nbits {
		// pad: remaining slots already zero-valued
	} else if pos+1 > nbits {
		uniform = uniform[:nbits]
	}
	return uniform, validIx
}

// IsUniform reports whether t is already spaced in units of ui (i.e.
// MakeUniform would be a no-op / idempotent on this input).
func IsUniform(t []float64, ui float64, tol float64) bool {
	for i := 1; i < len(t); i++ {
		gap := t[i] - t[i-1]
		run := math.Round(gap / ui)
		if math.Abs(gap-run*ui) > tol*ui {
			return false
		}
	}
	return true
}
