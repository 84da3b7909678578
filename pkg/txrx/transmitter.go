// Package txrx implements the transmitter FFE/noise stage and the CTLE
// pole/zero synthesis and convolution.
package txrx

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ocupoint/linksim/pkg/dsp"
)

// gFc is the corner frequency of the periodic-noise coupling high-pass
// filter.
const gFc = 1e6 // 1 MHz

// FFETaps is the 3-tap feed-forward filter [pretap, main, posttap].
type FFETaps struct {
	Pre, Post float64
}

// Main returns the center tap value 1 - |pre| - |post|.
func (t FFETaps) Main() float64 {
	return 1 - math.Abs(t.Pre) - math.Abs(t.Post)
}

// Taps returns the ordered [pre, main, post] coefficients.
func (t FFETaps) Taps() [3]float64 {
	return [3]float64{t.Pre, t.Main(), t.Post}
}

// TxOptions configure periodic and random noise injection.
type TxOptions struct {
	PNMag     float64 // periodic coupling noise amplitude (V)
	PNFreqHz  float64 // periodic coupling noise frequency (Hz)
	RN        float64 // receive-side Gaussian noise standard deviation (V)
	Nspb      int
	Ts        float64
	Rng       *rand.Rand
}

// ImpulseResponse returns h_tx: the FIR taps with Nspb-1 zeros between each.
func ImpulseResponse(taps FFETaps, nspb int) []float64 {
	t := taps.Taps()
	h := make([]float64, 2*nspb+1)
	h[0] = t[0]
	h[nspb] = t[1]
	h[2*nspb] = t[2]
	return h
}

// Apply upsamples the symbol stream by zero-order hold to Nspb samples per
// symbol after FFE filtering, adds high-pass-filtered periodic coupling
// noise, convolves with the channel impulse response, and finally adds
// receive-side Gaussian noise.
func Apply(symbols []float64, taps FFETaps, hCh []float64, opts TxOptions) ([]float64, error) {
	if opts.Nspb <= 0 || opts.Ts <= 0 {
		return nil, fmt.Errorf("txrx: Nspb and Ts must be positive")
	}

	t := taps.Taps()
	filtered := make([]float64, len(symbols))
	for i := range symbols {
		var acc float64
		acc += t[1] * symbols[i]
		if i > 0 {
			acc += t[2] * symbols[i-1]
		}
		if i < len(symbols)-1 {
			acc += t[0] * symbols[i+1]
		}
		filtered[i] = acc
	}

	x := make([]float64, len(filtered)*opts.Nspb)
	for i, v := range filtered {
		for j := 0; j < opts.Nspb; j++ {
			x[i*opts.Nspb+j] = v
		}
	}

	if opts.PNMag != 0 {
		sq := make([]float64, len(x))
		period := 1.0 / opts.PNFreqHz
		for i := range sq {
			phase := math.Mod(float64(i)*opts.Ts, period)
			if phase >= period/2 {
				sq[i] = opts.PNMag
			}
		}
		hp := highPass2ndOrder(sq, opts.Ts, gFc)
		for i := range x {
			x[i] += hp[i]
		}
	}

	y := dsp.Convolve(x, hCh, len(x))

	if opts.RN != 0 {
		rng := opts.Rng
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		for i := range y {
			y[i] += rng.NormFloat64() * opts.RN
		}
	}

	return y, nil
}

// highPass2ndOrder implements a 2nd-order Butterworth-style IIR high-pass
// with corner frequency fc at sample rate 1/ts, used to model capacitive
// coupling of the periodic noise square wave.
func highPass2ndOrder(x []float64, ts, fc float64) []float64 {
	wc := 2 * math.Pi * fc
	k := wc * ts / 2
	// Bilinear-transform coefficients for a 2nd-order high-pass with
	// Q = 1/sqrt(2) (Butterworth).
	a0 := 1 + math.Sqrt2*k + k*k
	b0 := 1 / a0
	b1 := -2 / a0
	b2 := 1 / a0
	a1 := (2*k*k - 2) / a0
	a2 := (1 - math.Sqrt2*k + k*k) / a0

	out := make([]float64, len(x))
	var x1, x2, y1, y2 float64
	for i, v := range x {
		y := b0*v + b1*x1 + b2*x2 - a1*y1 - a2*y2
		out[i] = y
		x2, x1 = x1, v
		y2, y1 = y1, y
	}
	return out
}
