// Package dsp holds the numeric kernels shared across pipeline stages: FFT
// and convolution, threshold-crossing extraction, impulse-response trimming,
// uniform-grid resampling and moving averages.
//
// Uses gonum.org/v1/gonum/dsp/fourier for FFT operations.
package dsp

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT computes the DFT of a real sequence after zero-padding to n samples.
// The result uses the non-shifted layout: indices 0..n/2 are non-negative
// frequencies, n/2+1..n-1 are the mirrored negatives.
func FFT(x []float64, n int) []complex128 {
	if n < len(x) {
		panic("dsp: FFT length shorter than input")
	}
	padded := make([]complex128, n)
	for i, v := range x {
		padded[i] = complex(v, 0)
	}
	cf := fourier.NewCmplxFFT(n)
	return cf.Coefficients(nil, padded)
}

// IFFT computes the inverse DFT, discarding the (numerically negligible)
// imaginary part of the result since impulse responses are real.
func IFFT(X []complex128) []float64 {
	n := len(X)
	cf := fourier.NewCmplxFFT(n)
	seq := cf.Sequence(nil, X)
	out := make([]float64, n)
	for i, v := range seq {
		out[i] = real(v)
	}
	return out
}

// Convolve computes the linear convolution of x and h, truncated to the
// first n samples (the length of the upstream waveform), via direct
// zero-padded FFT multiplication.
func Convolve(x, h []float64, n int) []float64 {
	fftLen := len(x) + len(h) - 1
	if fftLen < 1 {
		fftLen = 1
	}
	X := FFT(x, fftLen)
	H := FFT(h, fftLen)
	Y := make([]complex128, fftLen)
	for i := range Y {
		Y[i] = X[i] * H[i]
	}
	y := IFFT(Y)
	if n > len(y) {
		n = len(y)
	}
	return y[:n]
}
