package dfe

// Null is the test-double DFE/CDR: it performs no equalization and recovers
// the clock at the nominal UI grid, sampling y at mid-UI. Per the design
// note, a test double producing zero tap weights satisfies the loopback
// scenario.
type Null struct {
	Config Config
}

var _ Runner = Null{}

// Run samples y at the center of each UI, slicing against zero, and reports
// a permanently locked CDR with no adapted taps. With no taps to subtract,
// DFEOut is a copy of y, sample-aligned with t.
func (n Null) Run(t, y []float64) (Output, error) {
	ui := n.Config.UI
	if ui <= 0 {
		ui = 1
	}
	if len(t) == 0 {
		return Output{}, nil
	}

	start := t[0] + ui/2
	end := t[len(t)-1]

	var clocks, uiEsts, clockTimes []float64
	dfeOut := append([]float64(nil), y...)
	var lockeds []bool
	var bitsOut []int

	taps := make([]float64, n.Config.NTaps)
	var tapHistory [][]float64

	idx := 0
	for ct := start; ct <= end; ct += ui {
		for idx < len(t)-1 && t[idx+1] <= ct {
			idx++
		}
		sample := interpAt(t, y, ct, idx)

		clocks = append(clocks, ct)
		clockTimes = append(clockTimes, ct)
		uiEsts = append(uiEsts, ui)
		lockeds = append(lockeds, true)
		tapHistory = append(tapHistory, append([]float64(nil), taps...))

		if sample >= 0 {
			bitsOut = append(bitsOut, 1)
		} else {
			bitsOut = append(bitsOut, 0)
		}
	}

	if len(tapHistory) == 0 {
		tapHistory = [][]float64{append([]float64(nil), taps...)}
	}

	return Output{
		DFEOut:     dfeOut,
		TapWeights: tapHistory,
		UIEsts:     uiEsts,
		Clocks:     clocks,
		Lockeds:    lockeds,
		ClockTimes: clockTimes,
		BitsOut:    bitsOut,
	}, nil
}

// interpAt linearly interpolates y at time ct given the bracketing index i
// such that t[i] <= ct.
func interpAt(t, y []float64, ct float64, i int) float64 {
	if i >= len(t)-1 {
		return y[len(y)-1]
	}
	t0, t1 := t[i], t[i+1]
	if t1 == t0 {
		return y[i]
	}
	frac := (ct - t0) / (t1 - t0)
	return y[i] + frac*(y[i+1]-y[i])
}
