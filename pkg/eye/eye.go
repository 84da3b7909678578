// Package eye assembles the eye-diagram density map: a 2-D histogram of a
// waveform folded modulo two unit intervals. Rendering is explicitly out of
// scope; this package produces the density grid only.
package eye

import "math"

// Grid is the density map: Rows x Cols counts of (phase, voltage) samples.
type Grid struct {
	Counts   [][]int
	PhaseMin float64
	PhaseMax float64
	VMin     float64
	VMax     float64
	Cols     int
	Rows     int
}

// Build folds y (sampled at times t) modulo 2*UI and bins it against
// voltage into a Rows x Cols density grid.
func Build(t, y []float64, ui float64, cols, rows int) Grid {
	g := Grid{
		Counts:   make([][]int, rows),
		PhaseMin: -ui,
		PhaseMax: ui,
		Cols:     cols,
		Rows:     rows,
	}
	for i := range g.Counts {
		g.Counts[i] = make([]int, cols)
	}
	if len(y) == 0 {
		return g
	}

	vmin, vmax := y[0], y[0]
	for _, v := range y {
		if v < vmin {
			vmin = v
		}
		if v > vmax {
			vmax = v
		}
	}
	if vmin == vmax {
		vmax = vmin + 1
	}
	g.VMin, g.VMax = vmin, vmax

	span := 2 * ui
	for i := range y {
		phase := math.Mod(t[i], span)
		if phase > ui {
			phase -= span
		}
		col := int((phase - g.PhaseMin) / (g.PhaseMax - g.PhaseMin) * float64(cols))
		if col < 0 {
			col = 0
		}
		if col >= cols {
			col = cols - 1
		}
		row := int((y[i] - vmin) / (vmax - vmin) * float64(rows))
		if row < 0 {
			row = 0
		}
		if row >= rows {
			row = rows - 1
		}
		g.Counts[row][col]++
	}
	return g
}

// OpeningWidths splits the grid's rows into 2*levels-1 equal bands and, for
// each of the expected eye openings, scans one voltage row (the first row of
// band 2*l+1) and returns the phase span of its longest run of zero-hit
// columns — the eye width. levels sets
// the number of distinct eye openings expected (2 for NRZ/DuoBinary, 3 for
// PAM-4).
func (g Grid) OpeningWidths(levels int) []float64 {
	if levels <= 0 || g.Rows == 0 {
		return nil
	}
	widths := make([]float64, 0, levels)
	bandHeight := g.Rows / (2*levels - 1)
	if bandHeight == 0 {
		bandHeight = 1
	}
	for l := 0; l < levels; l++ {
		rowCenter := (2*l + 1) * bandHeight
		if rowCenter >= g.Rows {
			rowCenter = g.Rows - 1
		}
		widths = append(widths, zeroRunWidth(g.Counts[rowCenter], g.PhaseMax-g.PhaseMin))
	}
	return widths
}

// zeroRunWidth returns the fraction of span covered by the longest run of
// zero-count columns in row, scaled to real phase units.
func zeroRunWidth(row []int, span float64) float64 {
	best, cur := 0, 0
	for _, c := range row {
		if c == 0 {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	if len(row) == 0 {
		return 0
	}
	return span * float64(best) / float64(len(row))
}
