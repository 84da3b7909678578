package txrx

import (
	"math"
	"math/cmplx"
)

// CTLEParams synthesizes the analog continuous-time linear equalizer from
// three knobs: receiver bandwidth, equalization peaking frequency, and
// peaking magnitude.
type CTLEParams struct {
	RxBandwidthHz float64 // receiver bandwidth: pole p2 = -2π·RxBandwidthHz
	PeakFreqHz    float64 // pole p1 = -2π·PeakFreqHz; the zero is p1 scaled down by PeakMagDB
	PeakMagDB     float64 // peaking magnitude at PeakFreqHz, dB
}

// BuildH evaluates H_ctle(ω) at the supplied angular frequency grid and
// normalizes the result so |H_ctle(0)| = 1, per Testable Property 3.
func BuildH(p CTLEParams, omegas []float64) []complex128 {
	p2 := complex(-2*math.Pi*p.RxBandwidthHz, 0)
	p1 := complex(-2*math.Pi*p.PeakFreqHz, 0)
	z := p1 / complex(math.Pow(10, p.PeakMagDB/20), 0)

	// Partial-fraction residues for H(s) = k*(s - z) / ((s - p1)(s - p2))
	// with k chosen later by normalization, so set k = 1 here. p1 == p2 is
	// a legal config (rx_bw == peak_freq) and collapses to a repeated pole,
	// whose residues follow a different recurrence than the distinct-pole
	// case.
	var r1, r2 complex128
	degenerate := p1 == p2
	if degenerate {
		r1 = complex(-1, 0)
		r2 = z - p1
	} else {
		r1 = (p1 - z) / (p1 - p2)
		r2 = (p2 - z) / (p2 - p1)
	}

	evalAt := func(w float64) complex128 {
		s := complex(0, w)
		if degenerate {
			return r1/(s-p1) + r2/((s-p1)*(s-p1))
		}
		return r1/(s-p1) + r2/(s-p2)
	}

	h0 := evalAt(0)
	mag0 := cmplx.Abs(h0)
	if mag0 == 0 {
		mag0 = 1
	}

	out := make([]complex128, len(omegas))
	for i, w := range omegas {
		out[i] = evalAt(w) / complex(mag0, 0)
	}
	return out
}
