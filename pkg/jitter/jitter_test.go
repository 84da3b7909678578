package jitter

import (
	"math"
	"testing"
)

// idealForLoopback builds a clean ideal crossing grid: one crossing per UI,
// starting at UI/2, for nbits unit intervals.
func idealForLoopback(ui float64, nbits int) []float64 {
	out := make([]float64, nbits)
	for i := range out {
		out[i] = ui/2 + float64(i)*ui
	}
	return out
}

func TestAnalyzeLoopbackLowJitter(t *testing.T) {
	const ui = 1e-9
	const nbits = 508 // multiple of pattern_len=127
	const patternLen = 127

	ideal := idealForLoopback(ui, nbits)
	actual := make([]float64, len(ideal))
	copy(actual, ideal)

	res, err := Analyze(ideal, actual, Options{UI: ui, Nbits: nbits, PatternLen: patternLen, SubtractMean: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.ISI > 1e-12 || res.DCD > 1e-12 {
		t.Fatalf("expected near-zero ISI/DCD on perfect loopback, got isi=%g dcd=%g", res.ISI, res.DCD)
	}
	sum := 0.0
	for _, h := range res.Hist {
		sum += h
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("histogram PMF should sum to 1, got %g", sum)
	}
}

func TestHistogramPMFSumsToOne(t *testing.T) {
	const ui = 1e-9
	x := []float64{-0.9 * ui, -0.1 * ui, 0, 0.2 * ui, 0.9 * ui}
	hist, centers := histogramPMF(x, ui)
	if len(centers) != numBins {
		t.Fatalf("expected %d bin centers, got %d", numBins, len(centers))
	}
	var sum float64
	for _, h := range hist {
		sum += h
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("PMF sum = %g, want 1", sum)
	}
}

func TestInsufficientCoverageErrors(t *testing.T) {
	const ui = 1e-9
	ideal := idealForLoopback(ui, 10)
	actual := ideal[:2]
	_, err := Analyze(ideal, actual, Options{UI: ui, Nbits: 10, PatternLen: 127})
	if err == nil {
		t.Fatal("expected error for insufficient crossing coverage")
	}
}

func TestMissedCrossingInsertsPadSentinels(t *testing.T) {
	const ui = 1e-9
	ideal := idealForLoopback(ui, 6)
	actual := []float64{ideal[0], ideal[1], ideal[4], ideal[5]}
	tie, tTie := assembleTIE(ideal, actual, ui, false)
	if len(tie) != len(tTie) {
		t.Fatalf("tie/tTie length mismatch: %d vs %d", len(tie), len(tTie))
	}
	foundPad := false
	for _, v := range tie {
		if math.Abs(v-3*ui/4) < 1e-15 || math.Abs(v+3*ui/4) < 1e-15 {
			foundPad = true
		}
	}
	if !foundPad {
		t.Fatal("expected pad sentinels for the missed crossings")
	}
}
