package channel

import (
	"math"
	"testing"
)

func defaultParams() Params {
	return Params{
		R0: 10, W0: 2 * math.Pi * 1e9, Rdc: 1, Z0: 50, V0: 2e8, Theta0: 0.02,
		Len: 0.1, Rs: 50, Cs: 1e-12, RL: 50, Cp: 1e-12, CL: 1e-6,
	}
}

func TestBuildLengths(t *testing.T) {
	p := defaultParams()
	const n = 256
	const ts = 1e-11
	m := Build(p, n, ts)
	if len(m.G) != n {
		t.Fatalf("G length = %d, want %d", len(m.G), n)
	}
	if len(m.H) == 0 || len(m.H) > n {
		t.Fatalf("trimmed impulse response length out of range: %d", len(m.H))
	}
}

func TestZeroLossHasUnitMagnitudeNearDC(t *testing.T) {
	p := defaultParams()
	p.Len = 0
	const n = 256
	const ts = 1e-11
	m := Build(p, n, ts)
	mag := cAbs(m.G[1])
	if mag <= 0 || mag > 1.5 {
		t.Fatalf("unexpected |G| near DC for zero-length line: %g", mag)
	}
}

func cAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
