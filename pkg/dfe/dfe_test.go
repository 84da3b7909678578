package dfe

import (
	"testing"
)

func TestNullAlwaysLocked(t *testing.T) {
	const ui = 1e-9
	n := 200
	tt := make([]float64, n)
	y := make([]float64, n)
	for i := range tt {
		tt[i] = float64(i) * ui / 8
		if (i/8)%2 == 0 {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}

	r := Null{Config: Config{UI: ui, NTaps: 2}}
	out, err := r.Run(tt, y)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Lockeds) == 0 {
		t.Fatal("expected clock samples")
	}
	for _, l := range out.Lockeds {
		if !l {
			t.Fatal("Null must report permanently locked")
		}
	}
	taps, err := out.FinalTaps()
	if err != nil {
		t.Fatalf("FinalTaps: %v", err)
	}
	for _, v := range taps {
		if v != 0 {
			t.Fatalf("expected zero tap weights from the test double, got %v", taps)
		}
	}
}

func TestFinalTapsErrorsOnEmptyOutput(t *testing.T) {
	var out Output
	if _, err := out.FinalTaps(); err == nil {
		t.Fatal("expected error for empty tap history")
	}
}

func TestNullBitDecisionMatchesSign(t *testing.T) {
	const ui = 1e-9
	tt := []float64{0, ui}
	y := []float64{1, 1}
	r := Null{Config: Config{UI: ui}}
	out, err := r.Run(tt, y)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.BitsOut) == 0 {
		t.Fatal("expected at least one recovered bit")
	}
	if out.BitsOut[0] != 1 {
		t.Fatalf("expected recovered bit 1 for positive sample, got %d", out.BitsOut[0])
	}
}
