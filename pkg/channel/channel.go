// Package channel implements ChannelModel: the lossy-interconnect
// propagation-constant computation and the source/load-terminated loaded
// response.
package channel

import (
	"math"
	"math/cmplx"

	"github.com/ocupoint/linksim/pkg/dsp"
)

// Params are the physical channel parameters, conventional units
// (Ω, rad/s, Ω, Ω, m/s, dimensionless, m, Ω, F, Ω, F, F).
type Params struct {
	R0     float64 // Ω/√Hz-ish skin-effect coefficient
	W0     float64 // rad/s reference frequency
	Rdc    float64 // Ω DC resistance
	Z0     float64 // Ω characteristic impedance
	V0     float64 // m/s propagation velocity
	Theta0 float64 // dielectric loss tangent exponent
	Len    float64 // m interconnect length
	Rs     float64 // Ω source resistance
	Cs     float64 // F source capacitance
	RL     float64 // Ω load resistance
	Cp     float64 // F load parallel capacitance
	CL     float64 // F load series (AC coupling) capacitance
}

// Model is the computed channel: loaded frequency response G(ω) and its
// trimmed impulse response.
type Model struct {
	Freqs []float64 // angular frequencies (rad/s) used for G
	G     []complex128
	H     []float64 // trimmed impulse response
	Delay float64   // nominal propagation delay ℓ/v0, used by TrimImpulse
}

// Build evaluates G(ω) at the FFT angular-frequency grid implied by fftLen
// samples at period ts, then computes and trims the impulse response. G is
// doubled to compensate the nominal 1/2 source/load divider, so a matched
// zero-length line has unit gain near DC.
func Build(p Params, fftLen int, ts float64) Model {
	omegas := angularFreqGrid(fftLen, ts)
	G := make([]complex128, fftLen)
	for i, w := range omegas {
		G[i] = 2 * loadedResponse(p, w)
	}

	h := dsp.IFFT(G)
	delay := p.Len / p.V0
	trimmed := dsp.TrimImpulse(h, delay, ts)

	return Model{Freqs: omegas, G: G, H: trimmed, Delay: delay}
}

// angularFreqGrid returns the angular frequencies (rad/s) at each FFT bin
// for a real sample rate of 1/ts, in the non-shifted DFT layout.
func angularFreqGrid(n int, ts float64) []float64 {
	fs := 1.0 / ts
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		var f float64
		if k <= n/2 {
			f = float64(k) * fs / float64(n)
		} else {
			f = float64(k-n) * fs / float64(n)
		}
		out[k] = 2 * math.Pi * f
	}
	return out
}

// loadedResponse evaluates G(ω) for the metallic-transmission-line model
// terminated by the source and load networks.
func loadedResponse(p Params, w float64) complex128 {
	if w == 0 {
		w = 1e-12 // guard against division by zero at DC; discarded downstream by log plots
	}

	jw := complex(0, w)

	rac := complex(p.R0, 0) * cmplx.Sqrt(2*jw/complex(p.W0, 0))
	r := cmplx.Sqrt(complex(p.Rdc*p.Rdc, 0) + rac*rac)

	l0 := p.Z0 / p.V0
	c0 := 1 / (p.Z0 * p.V0)

	exponent := complex(-2*p.Theta0/math.Pi, 0)
	c := complex(c0, 0) * cmplxPow(jw/complex(p.W0, 0), exponent)

	zSeries := jw*complex(l0, 0) + r
	yShunt := jw * c
	gamma := cmplx.Sqrt(zSeries * yShunt)
	zc := cmplx.Sqrt(zSeries / yShunt)

	h := cmplx.Exp(-complex(p.Len, 0) * gamma)

	zs := complex(p.Rs, 0) / (1 + jw*complex(p.Rs*p.Cs, 0))
	zl := 2/(jw*complex(p.CL, 0)) + complex(p.RL, 0)/(1+jw*complex(p.RL*p.Cp/2, 0))

	// Admittance into the interconnect is (Cs || Zc) / (Rs + (Cs || Zc)).
	csParZc := zc / (1 + jw*zc*complex(p.Cs, 0))
	a := csParZc / (complex(p.Rs, 0) + csParZc)

	// Reflection coefficient at Rx (r1) and at Tx (r2).
	r1 := (zl - zc) / (zl + zc)
	r2 := (zs - zc) / (zs + zc)

	g := a * h * (1 + r1) / (1 - r1*r2*h*h)

	// Correct for divider action: we're interested in what appears across
	// RL, i.e. RL in parallel with the Cp/2 parasitic cap, divided by zl.
	zCapHalf := 1 / (jw * complex(p.Cp/2, 0))
	zParRL := (complex(p.RL, 0) * zCapHalf) / (complex(p.RL, 0) + zCapHalf)
	return g * (zParRL / zl)
}

// cmplxPow computes base^exp for complex base and exponent using the
// principal branch (exp(exp*log(base))).
func cmplxPow(base, exp complex128) complex128 {
	if base == 0 {
		return 0
	}
	return cmplx.Exp(exp * cmplx.Log(base))
}
