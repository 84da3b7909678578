package pipeline

import (
	"time"

	"github.com/ocupoint/linksim/pkg/dfe"
	"github.com/ocupoint/linksim/pkg/eye"
	"github.com/ocupoint/linksim/pkg/jitter"
)

// Stage is one named waveform point in the pipeline (post-transmitter,
// post-CTLE, ...) together with its frequency response and jitter
// decomposition.
type Stage struct {
	Name   string
	T, Y   []float64
	H      []float64
	S      []float64 // cumulative_sum(H), the step response
	Freq   []complex128
	Jitter jitter.Result
}

// Result is the immutable plot-sink record a run produces: assembled once
// and never mutated after Run returns.
type Result struct {
	RunID    string
	Config   Config
	Timing   Timing
	Bits     []int
	Symbols  []float64
	Stages   []Stage
	DFE      dfe.Output
	HDFEOut  []complex128
	Eye      eye.Grid
	Duration time.Duration
}

// StageByName returns the named stage, or (Stage{}, false) if absent.
func (r *Result) StageByName(name string) (Stage, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}
