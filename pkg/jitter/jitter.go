// Package jitter implements JitterEngine: TIE track assembly from ideal and
// actual threshold crossings, its decomposition into ISI, DCD, PJ, RJ, and
// the histogram/bathtub synthesis.
package jitter

import (
	"fmt"
	"math"

	"github.com/ocupoint/linksim/pkg/dsp"
)

// MinBathtubVal floors the bathtub curves to avoid log-scale singularities.
const MinBathtubVal = 1e-18

const numBins = 99

// Options configure a single Analyze call.
type Options struct {
	UI          float64
	Nbits       int // number of unit intervals spanned (Nui after PAM-4 correction)
	PatternLen  int
	RelThresh   float64 // sigma multiples; default 6 if zero
	SubtractMean bool
}

// Result is the full jitter decomposition for one stage.
type Result struct {
	TIE         []float64
	TTIE        []float64
	ISI         float64
	DCD         float64
	PJ          float64
	RJ          float64
	TIEInd      []float64
	Thresh      []float64
	Spectrum    []float64
	IndSpectrum []float64
	Freqs       []float64
	Hist        []float64
	HistSynth   []float64
	BinCenters  []float64
	Bathtub     []float64
}

// Analyze runs the full four-phase jitter decomposition.
func Analyze(idealXings, actualXings []float64, opts Options) (Result, error) {
	relThresh := opts.RelThresh
	if relThresh == 0 {
		relThresh = 6
	}

	tie, tTie := assembleTIE(idealXings, actualXings, opts.UI, opts.SubtractMean)

	// xingsPerPattern is measured against the same UI/2-anchored local time
	// basis assembleTIE uses internally, not against idealXings' absolute
	// time, so a caller passing a crossing grid that starts partway into a
	// run (the DFE stage's trailing eye window) still lines up correctly.
	var shiftedIdeal []float64
	if len(idealXings) > 0 {
		shiftedIdeal = shift(idealXings, opts.UI/2-idealXings[0])
	}
	xingsPerPattern, err := firstIndexAtOrAbove(shiftedIdeal, float64(opts.PatternLen)*opts.UI)
	if err != nil {
		return Result{}, fmt.Errorf("jitter: %w", err)
	}
	if xingsPerPattern == 0 {
		return Result{}, fmt.Errorf("jitter: pattern_len*UI precedes every ideal crossing")
	}
	fallingsPerPattern := xingsPerPattern / 2
	risingsPerPattern := xingsPerPattern - fallingsPerPattern
	numPatterns := opts.Nbits / opts.PatternLen
	if numPatterns == 0 {
		return Result{}, fmt.Errorf("jitter: nbits/pattern_len must be >= 1")
	}
	if len(tie) < numPatterns*xingsPerPattern {
		return Result{}, fmt.Errorf("jitter: len(TIE)=%d insufficient for num_patterns=%d * xings_per_pattern=%d",
			len(tie), numPatterns, xingsPerPattern)
	}

	tieRiseAvg, tieFallAvg := reshapeAverage(tie, numPatterns, risingsPerPattern, fallingsPerPattern)
	isi := math.Min(math.Max(peakToPeak(tieRiseAvg), peakToPeak(tieFallAvg)), opts.UI)
	dcd := math.Abs(mean(tieRiseAvg) - mean(tieFallAvg))

	tieAve := interleaveTile(tieRiseAvg, tieFallAvg, len(tie))
	tieInd := make([]float64, len(tie))
	for i := range tie {
		tieInd[i] = tie[i] - tieAve[i]
	}

	uniformAll, _ := dsp.MakeUniform(tie, tTie, opts.UI, opts.Nbits)
	totalSpecFull := dsp.FFT(uniformAll, len(uniformAll))
	half := len(totalSpecFull) / 2
	spectrum := make([]float64, half)
	for i := 0; i < half; i++ {
		spectrum[i] = cAbs(totalSpecFull[i]) / math.Sqrt(float64(len(tie)))
	}
	freqs := make([]float64, half)
	f0 := 1.0 / (opts.UI * float64(opts.Nbits))
	for i := range freqs {
		freqs[i] = float64(i) * f0
	}

	uniformInd, validIx := dsp.MakeUniform(tieInd, tTie, opts.UI, opts.Nbits)
	yFull := dsp.FFT(uniformInd, len(uniformInd))
	y := make([]complex128, len(yFull))
	denom := math.Sqrt(float64(len(tieInd)))
	for i := range yFull {
		y[i] = yFull[i] / complex(denom, 0)
	}

	yMag := make([]float64, len(y))
	for i, c := range y {
		yMag[i] = cAbs(c)
	}
	window := len(yMag) / 10
	if window < 1 {
		window = 1
	}
	yMean := dsp.MovingAverage(yMag, window)
	sqDev := make([]float64, len(yMag))
	for i := range yMag {
		d := yMag[i] - yMean[i]
		sqDev[i] = d * d
	}
	yVar := dsp.MovingAverage(sqDev, window)
	ySigma := make([]float64, len(yVar))
	for i := range yVar {
		ySigma[i] = math.Sqrt(yVar[i])
	}
	thresh := make([]float64, len(yMean))
	for i := range thresh {
		thresh[i] = yMean[i] + relThresh*ySigma[i]
	}

	yPer := make([]complex128, len(y))
	yRndMag := make([]float64, len(y))
	for i := range y {
		if yMag[i] > thresh[i] {
			yPer[i] = y[i]
		} else {
			yRndMag[i] = yMag[i]
		}
	}
	rj := stddev(yRndMag)

	tiePerUniform := dsp.IFFT(yPer)
	scaledTiePer := make([]float64, len(tiePerUniform))
	for i := range tiePerUniform {
		scaledTiePer[i] = tiePerUniform[i] * denom
	}
	tiePer := make([]float64, len(tie))
	for i, ix := range validIx {
		if ix >= 0 && ix < len(scaledTiePer) {
			tiePer[i] = scaledTiePer[ix]
		}
	}
	pj := peakToPeak(tiePer)

	indSpectrum := make([]float64, half)
	copy(indSpectrum, yMag[:min(half, len(yMag))])

	jitterSynth := make([]float64, len(tie))
	for i := range tie {
		jitterSynth[i] = tieAve[i] + tiePer[i]
	}

	hist, binCenters := histogramPMF(tie, opts.UI)
	histSynth, _ := histogramPMF(jitterSynth, opts.UI)
	histSynth = extrapolateTails(histSynth, binCenters, rj)
	bathtub := buildBathtub(histSynth)

	return Result{
		TIE:         tie,
		TTIE:        tTie,
		ISI:         isi,
		DCD:         dcd,
		PJ:          pj,
		RJ:          rj,
		TIEInd:      tieInd,
		Thresh:      thresh[:len(thresh)/2],
		Spectrum:    spectrum,
		IndSpectrum: indSpectrum,
		Freqs:       freqs,
		Hist:        hist,
		HistSynth:   histSynth,
		BinCenters:  binCenters,
		Bathtub:     bathtub,
	}, nil
}

// buildBathtub folds the extrapolated PMF into a cumulative bathtub curve:
// from each end, a cumulative sum working in toward the middle, floored
// below MinBathtubVal (not clamped up to it, only lifted off zero/negative
// values that would break a log-scale plot).
func buildBathtub(histSynth []float64) []float64 {
	n := len(histSynth)
	if n == 0 {
		return nil
	}
	halfLen := n / 2

	right := make([]float64, halfLen)
	var sum float64
	for i := 0; i < halfLen; i++ {
		sum += histSynth[n-1-i]
		right[i] = sum
	}
	for i, j := 0, len(right)-1; i < j; i, j = i+1, j-1 {
		right[i], right[j] = right[j], right[i]
	}

	left := make([]float64, 0, halfLen+1)
	sum = 0
	for i := 0; i <= halfLen && i < n; i++ {
		sum += histSynth[i]
		left = append(left, sum)
	}

	out := append(right, left...)
	for i := range out {
		if out[i] < MinBathtubVal {
			out[i] = 0.1 * MinBathtubVal
		}
	}
	return out
}

// assembleTIE performs TIE track assembly with missed-crossing pad handling.
func assembleTIE(ideal, actual []float64, ui float64, subtractMean bool) (tie, tTie []float64) {
	if len(ideal) == 0 {
		return nil, nil
	}
	offset := ui/2 - ideal[0]
	shiftedIdeal := shift(ideal, offset)
	shiftedActual := shift(actual, offset)

	cursor := 0
	skipNext := false
	for _, xi := range shiftedIdeal {
		if skipNext {
			tTie = append(tTie, xi)
			skipNext = false
			continue
		}
		minT := xi - ui
		maxT := xi + ui

		for cursor < len(shiftedActual) && shiftedActual[cursor] < minT {
			cursor++
		}
		if cursor >= len(shiftedActual) {
			break
		}
		if shiftedActual[cursor] > maxT {
			// Missed crossing: pad with alternating sentinels.
			tie = append(tie, 3*ui/4, -3*ui/4)
			skipNext = true
			tTie = append(tTie, xi)
			continue
		}

		best := cursor
		bestDev := math.Abs(shiftedActual[cursor] - xi)
		j := cursor + 1
		for j < len(shiftedActual) && shiftedActual[j] <= maxT {
			dev := math.Abs(shiftedActual[j] - xi)
			if dev < bestDev {
				bestDev = dev
				best = j
			}
			j++
		}
		tie = append(tie, shiftedActual[best]-xi)
		cursor = best + 1
		tTie = append(tTie, xi)
	}

	if subtractMean && len(tie) > 0 {
		m := mean(tie)
		for i := range tie {
			tie[i] -= m
		}
	}
	return tie, tTie
}

func shift(xs []float64, offset float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x + offset
	}
	return out
}

func firstIndexAtOrAbove(xs []float64, v float64) (int, error) {
	for i, x := range xs {
		if x >= v {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no ideal crossing reaches pattern_len*UI = %g", v)
}

// reshapeAverage extracts the rising (even-stride) and falling (odd-stride)
// crossings from each pattern-length block of tie and averages across
// patterns.
func reshapeAverage(tie []float64, numPatterns, risingsPerPattern, fallingsPerPattern int) (rise, fall []float64) {
	xingsPerPattern := risingsPerPattern + fallingsPerPattern
	rise = make([]float64, risingsPerPattern)
	fall = make([]float64, fallingsPerPattern)

	for p := 0; p < numPatterns; p++ {
		block := tie[p*xingsPerPattern : (p+1)*xingsPerPattern]
		ri, fi := 0, 0
		for i, v := range block {
			if i%2 == 0 {
				rise[ri] += v
				ri++
			} else {
				fall[fi] += v
				fi++
			}
		}
	}
	for i := range rise {
		rise[i] /= float64(numPatterns)
	}
	for i := range fall {
		fall[i] /= float64(numPatterns)
	}
	return rise, fall
}

// interleaveTile interleaves rise and fall (rise[0], fall[0], rise[1], ...)
// and tiles the result to length n.
func interleaveTile(rise, fall []float64, n int) []float64 {
	pattern := make([]float64, 0, len(rise)+len(fall))
	for i := 0; i < len(rise) || i < len(fall); i++ {
		if i < len(rise) {
			pattern = append(pattern, rise[i])
		}
		if i < len(fall) {
			pattern = append(pattern, fall[i])
		}
	}
	if len(pattern) == 0 {
		return make([]float64, n)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = pattern[i%len(pattern)]
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func peakToPeak(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return hi - lo
}

func stddev(xs []float64) float64 {
	m := mean(xs)
	var s float64
	for _, x := range xs {
		d := x - m
		s += d * d
	}
	if len(xs) == 0 {
		return 0
	}
	return math.Sqrt(s / float64(len(xs)))
}

func cAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// binEdges builds the 99-bin edge set: an outer wing from -UI to -UI/2,
// inner bins spanning [-UI/2, UI/2], and an outer wing from UI/2 to UI.
func binEdges(ui float64) []float64 {
	edges := make([]float64, 0, numBins+1)
	edges = append(edges, -ui)
	for k := 0; k <= numBins-2; k++ {
		edges = append(edges, -ui/2+float64(k)*ui/float64(numBins-2))
	}
	edges = append(edges, ui)
	return edges
}

func binCentersFor(edges []float64) []float64 {
	centers := make([]float64, len(edges)-1)
	centers[0] = edges[0] / 2 // -UI/2, the reference's explicit first center
	for i := 1; i < len(centers)-1; i++ {
		centers[i] = (edges[i] + edges[i+1]) / 2
	}
	centers[len(centers)-1] = edges[len(edges)-1] / 2
	return centers
}

func histogramPMF(x []float64, ui float64) (hist, centers []float64) {
	edges := binEdges(ui)
	centers = binCentersFor(edges)
	counts := make([]float64, len(edges)-1)
	for _, v := range x {
		idx := locateBin(edges, v)
		counts[idx]++
	}
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return counts, centers
	}
	for i := range counts {
		counts[i] /= total
	}
	return counts, centers
}

func locateBin(edges []float64, v float64) int {
	if v <= edges[0] {
		return 0
	}
	if v >= edges[len(edges)-1] {
		return len(edges) - 2
	}
	for i := 0; i < len(edges)-1; i++ {
		if v >= edges[i] && v < edges[i+1] {
			return i
		}
	}
	return len(edges) - 2
}

// extrapolateTails convolves hist with a Gaussian PMF of std rj sampled at
// bin centers, folding the convolution's tails into the two end bins.
func extrapolateTails(hist, binCenters []float64, rj float64) []float64 {
	if rj <= 0 {
		return hist
	}
	pmf := make([]float64, len(binCenters))
	var sum float64
	for i, c := range binCenters {
		pmf[i] = gaussianPDF(c, rj)
		sum += pmf[i]
	}
	if sum == 0 {
		return hist
	}
	for i := range pmf {
		pmf[i] /= sum
	}

	conv := convolveFull(hist, pmf)
	tailLen := (len(binCenters) - 1) / 2

	out := make([]float64, len(binCenters))
	var headSum, tailSum float64
	for i := 0; i <= tailLen; i++ {
		headSum += conv[i]
	}
	for i := len(conv) - tailLen - 1; i < len(conv); i++ {
		tailSum += conv[i]
	}
	out[0] = math.Max(headSum, MinBathtubVal)
	out[len(out)-1] = math.Max(tailSum, MinBathtubVal)
	for i := 1; i < len(out)-1; i++ {
		idx := tailLen + i
		if idx >= 0 && idx < len(conv) {
			out[i] = math.Max(conv[idx], MinBathtubVal)
		}
	}
	return out
}

func gaussianPDF(x, sigma float64) float64 {
	return math.Exp(-x*x/(2*sigma*sigma)) / (sigma * math.Sqrt(2*math.Pi))
}

func convolveFull(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}
