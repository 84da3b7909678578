package eye

import (
	"math"
	"testing"
)

func TestBuildGridShape(t *testing.T) {
	const ui = 1e-9
	n := 4000
	t_ := make([]float64, n)
	y := make([]float64, n)
	for i := range t_ {
		t_[i] = float64(i) * ui / 16
		if (i/16)%2 == 0 {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}
	g := Build(t_, y, ui, 64, 64)
	if len(g.Counts) != 64 || len(g.Counts[0]) != 64 {
		t.Fatalf("unexpected grid shape: %d x %d", len(g.Counts), len(g.Counts[0]))
	}
	var total int
	for _, row := range g.Counts {
		for _, c := range row {
			total += c
		}
	}
	if total != n {
		t.Fatalf("grid total count = %d, want %d", total, n)
	}
}

func TestOpeningWidthsNRZ(t *testing.T) {
	const ui = 1e-9
	n := 4000
	t_ := make([]float64, n)
	y := make([]float64, n)
	for i := range t_ {
		t_[i] = float64(i) * ui / 16
		if (i/16)%2 == 0 {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}
	g := Build(t_, y, ui, 64, 64)
	widths := g.OpeningWidths(2)
	if len(widths) != 2 {
		t.Fatalf("expected 2 opening widths, got %d", len(widths))
	}
	for _, w := range widths {
		if math.IsNaN(w) || w < 0 {
			t.Fatalf("invalid opening width: %g", w)
		}
	}
}
