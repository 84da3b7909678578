// Package dfe defines the DFE/CDR collaborator contract: an external,
// opaque adaptive equalizer and clock-data recovery subsystem that consumes
// the CTLE output waveform and returns recovered bits, per-bit decision
// samples, adapted tap weights, UI estimates, lock state, and recovered
// clock edge times.
package dfe

import "fmt"

// ModType mirrors symbol.Scheme's wire values so DFE implementations do not
// need to import pkg/symbol.
type ModType int

const (
	NRZ ModType = iota
	DuoBinary
	PAM4
)

// Config are the constructor arguments for a Runner.
type Config struct {
	NTaps          int
	Gain           float64
	DeltaT         float64 // delta_t_ps, seconds
	Alpha          float64
	UI             float64 // seconds
	NspUI          int
	DecisionScaler float64
	ModType        ModType

	NAve         int
	NLockAve     int
	RelLockTol   float64
	LockSustain  int
	SumBWHz      float64
	SumIdeal     bool
}

// Output is the aligned result of running the DFE/CDR over (t, y).
type Output struct {
	DFEOut     []float64
	TapWeights [][]float64
	UIEsts     []float64
	Clocks     []float64
	Lockeds    []bool
	ClockTimes []float64
	BitsOut    []int
}

// Runner is the contract a DFE/CDR collaborator must satisfy: given the
// CTLE output waveform, produce the aligned recovery result.
type Runner interface {
	Run(t, y []float64) (Output, error)
}

// FinalTaps returns the last row of TapWeights, the adapted tap set at the
// end of the run, used by the pipeline to build the post-DFE impulse
// response.
func (o Output) FinalTaps() ([]float64, error) {
	if len(o.TapWeights) == 0 {
		return nil, fmt.Errorf("dfe: no tap-weight history in output")
	}
	return o.TapWeights[len(o.TapWeights)-1], nil
}
