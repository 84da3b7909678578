// Package pipeline wires SymbolSource, ChannelModel, Transmitter, CTLE, the
// DFE/CDR collaborator, and JitterEngine into a single straight-line run.
package pipeline

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ocupoint/linksim/pkg/channel"
	"github.com/ocupoint/linksim/pkg/dfe"
	"github.com/ocupoint/linksim/pkg/dsp"
	"github.com/ocupoint/linksim/pkg/eye"
	"github.com/ocupoint/linksim/pkg/jitter"
	"github.com/ocupoint/linksim/pkg/symbol"
	"github.com/ocupoint/linksim/pkg/txrx"
	"github.com/ocupoint/linksim/pkg/waveform"
)

// Run executes one pipeline pass and returns the immutable result record.
// A nil dfeRunner defaults to dfe.Null, the zero-tap test double.
func Run(cfg Config, dfeRunner dfe.Runner) (*Result, error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timing := cfg.DerivedTiming()
	rng := rand.New(rand.NewSource(cfg.Seed))

	src, err := symbol.Generate(cfg.ModType, cfg.Nbits, cfg.Nspb, cfg.PatternLen, rng)
	if err != nil {
		return nil, fmt.Errorf("%w: symbol generation: %v", ErrConfiguration, err)
	}

	fftLen := len(src.X)

	chParams := channel.Params{
		R0: cfg.R0, W0: cfg.W0, Rdc: cfg.Rdc, Z0: cfg.Z0,
		V0: cfg.V0Rel * 3e8, Theta0: cfg.Theta0, Len: cfg.LenCh,
		Rs: cfg.Rs, Cs: cfg.CoutPF * 1e-12,
		RL: cfg.Rin, Cp: cfg.CinPF * 1e-12, CL: cfg.CacUF * 1e-6,
	}
	chModel := channel.Build(chParams, fftLen, timing.Ts)
	if len(chModel.H) == 0 {
		return nil, fmt.Errorf("%w: channel impulse response trimmed to zero length", ErrInsufficientSignal)
	}

	taps := txrx.FFETaps{Pre: cfg.Pretap, Post: cfg.Posttap}
	txOpts := txrx.TxOptions{
		PNMag: cfg.PNMag, PNFreqHz: cfg.PNFreqMHz * 1e6, RN: cfg.Rn,
		Nspb: cfg.Nspb, Ts: timing.Ts, Rng: rng,
	}
	yTx, err := txrx.Apply(src.Symbols, taps, chModel.H, txOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: transmitter stage: %v", ErrConfiguration, err)
	}

	t := make([]float64, len(yTx))
	for i := range t {
		t[i] = float64(i) * timing.Ts
	}

	ctleParams := txrx.CTLEParams{
		RxBandwidthHz: cfg.RxBWGHz * 1e9,
		PeakFreqHz:    cfg.PeakFreqGHz * 1e9,
		PeakMagDB:     cfg.PeakMagDB,
	}
	hCtle := txrx.BuildH(ctleParams, chModel.Freqs)
	hCtleImpulse := dsp.IFFT(hCtle)
	trimmedCtleImpulse := dsp.TrimImpulse(hCtleImpulse, chModel.Delay, timing.Ts)

	yCtle := dsp.Convolve(yTx, trimmedCtleImpulse, len(yTx))

	runner := dfeRunner
	if runner == nil {
		runner = dfe.Null{Config: cfg.DFEConfig(timing)}
	}
	dfeOut, err := runner.Run(t, yCtle)
	if err != nil {
		return nil, fmt.Errorf("dfe: %w", err)
	}

	hDFEOut := postDFEResponse(dfeOut, hCtle, cfg.Nspb)

	// Pure channel output: the ideal oversampled signal through the channel
	// alone, with no FFE shaping or injected noise.
	yChnl := dsp.Convolve(src.X, chModel.H, len(src.X))

	idealXings := nominalCrossingGrid(timing.UI, timing.Nui)

	chnlStage, err := buildStage("chnl", t, yChnl, chModel.H, chModel.G, idealXings, timing, cfg)
	if err != nil {
		return nil, err
	}
	txStage, err := buildStage("tx", t, yTx, chModel.H, chModel.G, idealXings, timing, cfg)
	if err != nil {
		return nil, err
	}
	ctleStage, err := buildStage("ctle", t, yCtle, trimmedCtleImpulse, hCtle, idealXings, timing, cfg)
	if err != nil {
		return nil, err
	}
	dfeStage, err := buildDFEStage(t, dfeOut.DFEOut, hDFEOut, timing, cfg)
	if err != nil {
		return nil, err
	}

	eyeGrid := eye.Build(t, yCtle, timing.UI, 128, 128)

	return &Result{
		RunID:    uuid.NewString(),
		Config:   cfg,
		Timing:   timing,
		Bits:     src.Bits,
		Symbols:  src.Symbols,
		Stages:   []Stage{chnlStage, txStage, ctleStage, dfeStage},
		DFE:      dfeOut,
		HDFEOut:  hDFEOut,
		Eye:      eyeGrid,
		Duration: time.Since(start),
	}, nil
}

// findActualCrossings dispatches to the single-threshold or duo-binary
// dual-threshold crossing scan according to cfg.ModType.
func findActualCrossings(t, y []float64, cfg Config, opts dsp.CrossingOptions) ([]float64, error) {
	if cfg.ModType == symbol.DuoBinary {
		return dsp.FindCrossingsDuoBinary(t, y, cfg.DecisionScaler, opts)
	}
	return dsp.FindCrossings(t, y, opts)
}

// buildStage assembles one Stage: its Response triple and jitter
// decomposition against the nominal crossing grid.
func buildStage(name string, t, y, h []float64, freq []complex128, idealXings []float64, timing Timing, cfg Config) (Stage, error) {
	s := waveform.CumulativeSum(h)

	actualXings, err := findActualCrossings(t, y, cfg, dsp.CrossingOptions{MinInitDev: 0.1, RisingFirst: true, RequireDirection: true})
	if err != nil {
		return Stage{}, fmt.Errorf("%w: stage %q: %v", ErrInsufficientSignal, name, err)
	}

	jr, err := jitter.Analyze(idealXings, actualXings, jitter.Options{
		UI: timing.UI, Nbits: timing.Nui, PatternLen: cfg.PatternLen,
		RelThresh: cfg.Thresh, SubtractMean: true,
	})
	if err != nil {
		return Stage{}, fmt.Errorf("%w: stage %q: %v", ErrInsufficientCoverage, name, err)
	}

	return Stage{Name: name, T: t, Y: y, H: h, S: s, Freq: freq, Jitter: jr}, nil
}

// buildDFEStage analyzes the DFE output against the ideal crossing grid
// restricted to the trailing eye_uis unit intervals (the DFE has a settling
// transient at its front, so only the final eye window is locked-on and
// comparable), scanning for falling-edge-first crossings the way the DFE's
// recovered clock does.
func buildDFEStage(t, y []float64, freq []complex128, timing Timing, cfg Config) (Stage, error) {
	h := dsp.IFFT(freq)
	s := waveform.CumulativeSum(h)

	ignoreUntil := float64(timing.Nui-timing.EyeUIs)*timing.UI + timing.UI/2
	full := nominalCrossingGrid(timing.UI, timing.Nui)
	var idealXings []float64
	for _, x := range full {
		if x >= ignoreUntil {
			idealXings = append(idealXings, x)
		}
	}

	actualXings, err := findActualCrossings(t, y, cfg, dsp.CrossingOptions{
		MinInitDev: 0.1, MinDelay: ignoreUntil, RisingFirst: false, RequireDirection: true,
	})
	if err != nil {
		return Stage{}, fmt.Errorf("%w: stage %q: %v", ErrInsufficientSignal, "dfe", err)
	}

	jr, err := jitter.Analyze(idealXings, actualXings, jitter.Options{
		UI: timing.UI, Nbits: timing.EyeUIs, PatternLen: cfg.PatternLen,
		RelThresh: cfg.Thresh, SubtractMean: true,
	})
	if err != nil {
		return Stage{}, fmt.Errorf("%w: stage %q: %v", ErrInsufficientCoverage, "dfe", err)
	}

	return Stage{Name: "dfe", T: t, Y: y, H: h, S: s, Freq: freq, Jitter: jr}, nil
}

// nominalCrossingGrid is the ideal threshold-crossing timeline: one
// crossing opportunity per unit interval, centered at UI/2, matching the
// SymbolSource prefix's synchronization phase.
func nominalCrossingGrid(ui float64, nui int) []float64 {
	out := make([]float64, nui)
	for i := range out {
		out[i] = ui/2 + float64(i)*ui
	}
	return out
}

// postDFEResponse combines a unit impulse with the negated final DFE tap
// weights spaced Nspb samples apart, and multiplies its DFT with H_ctle to
// obtain H_dfe_out.
func postDFEResponse(out dfe.Output, hCtle []complex128, nspb int) []complex128 {
	taps, err := out.FinalTaps()
	if err != nil || len(taps) == 0 {
		return append([]complex128(nil), hCtle...)
	}

	impulse := make([]float64, 1+len(taps)*nspb)
	impulse[0] = 1
	for k, w := range taps {
		idx := (k + 1) * nspb
		if idx < len(impulse) {
			impulse[idx] = -w
		}
	}

	hImpulse := dsp.FFT(impulse, len(hCtle))
	hOut := make([]complex128, len(hCtle))
	for i := range hCtle {
		hOut[i] = hCtle[i] * hImpulse[i]
	}
	return hOut
}
