// Package waveform defines the shared sampled-signal data shapes that flow
// through the link simulation pipeline: uniformly sampled time-domain
// waveforms and the impulse/step/frequency response triple.
package waveform

import (
	"fmt"
	"math"
)

// Waveform is a pair of equal-length ordered sequences (t, y). After
// SymbolSource, t is uniformly spaced with step Ts = UI / Nspb.
type Waveform struct {
	T []float64
	Y []float64
}

// Len returns the number of samples, or -1 if T and Y disagree in length.
func (w Waveform) Len() int {
	if len(w.T) != len(w.Y) {
		return -1
	}
	return len(w.T)
}

// Ts returns the sample period estimated from the first two time samples.
// Panics if fewer than two samples are present.
func (w Waveform) Ts() float64 {
	if len(w.T) < 2 {
		panic("waveform: Ts requires at least 2 samples")
	}
	return w.T[1] - w.T[0]
}

// CheckUniform verifies t is strictly increasing and uniformly spaced to
// within a relative tolerance, returning an error describing the first
// violation otherwise.
func (w Waveform) CheckUniform(tol float64) error {
	if len(w.T) < 2 {
		return nil
	}
	ts := w.Ts()
	if ts <= 0 {
		return fmt.Errorf("waveform: non-increasing time axis at index 0 (Ts=%g)", ts)
	}
	for i := 1; i < len(w.T); i++ {
		step := w.T[i] - w.T[i-1]
		if math.Abs(step-ts) > tol*math.Abs(ts) {
			return fmt.Errorf("waveform: non-uniform sampling at index %d: step=%g want=%g", i, step, ts)
		}
	}
	return nil
}

// Response is the impulse/step/frequency response triple of an LTI stage.
// S is the cumulative sum of H; Freq is the DFT of H after zero-padding to
// the full FFT length. Freq uses the non-shifted layout: indices 0..N/2 are
// non-negative frequencies, N/2+1..N-1 are the mirrored negatives.
type Response struct {
	H    []float64
	S    []float64
	Freq []complex128
}

// CumulativeSum returns the running sum of h, the same length as h.
func CumulativeSum(h []float64) []float64 {
	s := make([]float64, len(h))
	var acc float64
	for i, v := range h {
		acc += v
		s[i] = acc
	}
	return s
}

// NewResponse builds a Response triple from an impulse response, computing
// the step response as its cumulative sum and the frequency response via
// fft (which must zero-pad h to fftLen before transforming).
func NewResponse(h []float64, fft func([]float64) []complex128) Response {
	return Response{
		H:    h,
		S:    CumulativeSum(h),
		Freq: fft(h),
	}
}

// MaxAbs returns the largest absolute value in y, or 0 for an empty slice.
func MaxAbs(y []float64) float64 {
	m := 0.0
	for _, v := range y {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}
