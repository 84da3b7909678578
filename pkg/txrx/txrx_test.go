package txrx

import (
	"math"
	"math/rand"
	"testing"
)

func TestCTLEUnitDCGain(t *testing.T) {
	p := CTLEParams{RxBandwidthHz: 8e9, PeakFreqHz: 4e9, PeakMagDB: 6}
	omegas := make([]float64, 64)
	fs := 80e9
	for k := range omegas {
		var f float64
		if k <= len(omegas)/2 {
			f = float64(k) * fs / float64(len(omegas))
		} else {
			f = float64(k-len(omegas)) * fs / float64(len(omegas))
		}
		omegas[k] = 2 * math.Pi * f
	}
	H := BuildH(p, omegas)
	mag := math.Hypot(real(H[0]), imag(H[0]))
	if math.Abs(mag-1) > 1e-9 {
		t.Fatalf("|H_ctle(0)| = %g, want 1", mag)
	}
}

func TestFFETapsMainSum(t *testing.T) {
	taps := FFETaps{Pre: -0.1, Post: -0.05}
	arr := taps.Taps()
	sum := math.Abs(arr[0]) + math.Abs(arr[1]) + math.Abs(arr[2])
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("tap sum = %g, want 1", sum)
	}
}

func TestApplyPreservesLength(t *testing.T) {
	symbols := []float64{1, -1, 1, 1, -1, -1, 1, -1}
	taps := FFETaps{Pre: -0.05, Post: -0.05}
	hCh := []float64{1}
	opts := TxOptions{Nspb: 16, Ts: 1e-11, Rng: rand.New(rand.NewSource(1))}
	y, err := Apply(symbols, taps, hCh, opts)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := len(symbols) * opts.Nspb
	if len(y) != want {
		t.Fatalf("len(y) = %d, want %d", len(y), want)
	}
}

func TestApplyRejectsBadOptions(t *testing.T) {
	_, err := Apply([]float64{1}, FFETaps{}, []float64{1}, TxOptions{})
	if err == nil {
		t.Fatal("expected error for zero Nspb/Ts")
	}
}
