package dsp

import (
	"math"
	"testing"
)

func TestFFTRoundTrip(t *testing.T) {
	n := 256
	h := make([]float64, n)
	for i := range h {
		h[i] = math.Sin(2 * math.Pi * float64(i) / 32)
	}
	X := FFT(h, n)
	back := IFFT(X)

	var num, den float64
	for i := range h {
		d := back[i] - h[i]
		num += d * d
		den += h[i] * h[i]
	}
	if den == 0 {
		t.Fatal("degenerate input")
	}
	rel := math.Sqrt(num / den)
	if rel > 1e-10 {
		t.Fatalf("round trip relative error too large: %g", rel)
	}
}

func TestMovingAverageConstant(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = 3.0
	}
	avg := MovingAverage(x, 5)
	for i, v := range avg {
		if math.Abs(v-3.0) > 1e-12 {
			t.Fatalf("index %d: got %g want 3", i, v)
		}
	}
}

func TestFindCrossingsSine(t *testing.T) {
	const n = 1000
	const fs = 1000.0
	const freq = 10.0
	ts := make([]float64, n)
	xs := make([]float64, n)
	for i := 0; i < n; i++ {
		tt := float64(i) / fs
		ts[i] = tt
		xs[i] = math.Sin(2 * math.Pi * freq * tt)
	}

	crossings, err := FindCrossings(ts, xs, CrossingOptions{MinInitDev: 0.01})
	if err != nil {
		t.Fatalf("FindCrossings: %v", err)
	}
	if len(crossings) == 0 {
		t.Fatal("expected crossings")
	}
	period := 1.0 / freq
	sampleTs := 1.0 / fs
	for _, c := range crossings {
		// nearest analytical zero is a multiple of half period
		k := math.Round(c / (period / 2))
		want := k * (period / 2)
		if math.Abs(c-want) > sampleTs/2+1e-9 {
			t.Fatalf("crossing %g too far from analytical zero %g", c, want)
		}
	}
}

func TestMakeUniformIdempotent(t *testing.T) {
	const ui = 1.0
	vals := []float64{0.1, -0.2, 0.05, 0.3}
	tee := []float64{0, 1, 2, 3}
	uniform, _ := MakeUniform(vals, tee, ui, 4)
	if !IsUniform(tee, ui, 1e-9) {
		t.Fatal("expected input already uniform")
	}
	uniform2, _ := MakeUniform(uniform, tee, ui, 4)
	for i := range uniform {
		if math.Abs(uniform[i]-uniform2[i]) > 1e-12 {
			t.Fatalf("not idempotent at %d: %g vs %g", i, uniform[i], uniform2[i])
		}
	}
}

func TestTrimImpulseEnergy(t *testing.T) {
	h := make([]float64, 1000)
	for i := range h {
		h[i] = math.Exp(-float64(i) / 50.0)
	}
	trimmed := TrimImpulse(h, 0, 1.0)
	if len(trimmed) == 0 || len(trimmed) > len(h) {
		t.Fatalf("unexpected trimmed length %d", len(trimmed))
	}
}
