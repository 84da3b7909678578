package pipeline

import (
	"fmt"
	"math"

	"github.com/ocupoint/linksim/pkg/dfe"
	"github.com/ocupoint/linksim/pkg/symbol"
)

// Config is the Runner entry's configuration record.
type Config struct {
	// Waveform sizing.
	Nbits      int `json:"nbits"`
	EyeBits    int `json:"eye_bits"`
	Nspb       int `json:"nspb"`
	PatternLen int `json:"pattern_len"`

	// Transmit electrical.
	UIPs     float64 `json:"ui_ps"`
	Vod      float64 `json:"vod"`
	Rn       float64 `json:"rn"`
	PNMag    float64 `json:"pn_mag"`
	PNFreqMHz float64 `json:"pn_freq_mhz"`

	// Termination network.
	Rs      float64 `json:"rs"`
	CoutPF  float64 `json:"cout_pf"`
	Rin     float64 `json:"rin"`
	CacUF   float64 `json:"cac_uf"`
	CinPF   float64 `json:"cin_pf"`

	// Channel.
	R0      float64 `json:"r0"`
	W0      float64 `json:"w0"`
	Rdc     float64 `json:"rdc"`
	Z0      float64 `json:"z0"`
	V0Rel   float64 `json:"v0_rel"`
	Theta0  float64 `json:"theta0"`
	LenCh   float64 `json:"l_ch"`

	// FFE taps.
	Pretap  float64 `json:"pretap"`
	Posttap float64 `json:"posttap"`

	// CTLE.
	RxBWGHz     float64 `json:"rx_bw_ghz"`
	PeakFreqGHz float64 `json:"peak_freq_ghz"`
	PeakMagDB   float64 `json:"peak_mag_db"`

	// DFE.
	UseDFE         bool    `json:"use_dfe"`
	NTaps          int     `json:"n_taps"`
	Gain           float64 `json:"gain"`
	DeltaTPs       float64 `json:"delta_t_ps"`
	Alpha          float64 `json:"alpha"`
	DecisionScaler float64 `json:"decision_scaler"`
	NAve           int     `json:"n_ave"`
	NLockAve       int     `json:"n_lock_ave"`
	RelLockTol     float64 `json:"rel_lock_tol"`
	LockSustain    int     `json:"lock_sustain"`
	SumBWGHz       float64 `json:"sum_bw_ghz"`
	SumIdeal       bool    `json:"sum_ideal"`

	// Jitter.
	Thresh float64 `json:"thresh"`

	// Modulation.
	ModType symbol.Scheme `json:"mod_type"`

	// RNG seed for the run's pseudo-random pattern bits and noise: Run
	// seeds its generator with rand.NewSource(Seed), so equal seeds give
	// equal runs and 0 is an ordinary fixed seed.
	Seed int64 `json:"seed"`
}

// Validate checks the invariants required of a Config before a run
// begins; failures wrap ErrConfiguration.
func (c Config) Validate() error {
	if c.Nbits <= 0 || c.Nspb <= 0 {
		return fmt.Errorf("%w: nbits and nspb must be positive", ErrConfiguration)
	}
	if c.PatternLen < 4 {
		return fmt.Errorf("%w: pattern_len must be >= 4, got %d", ErrConfiguration, c.PatternLen)
	}
	if c.Nbits%c.PatternLen != 0 {
		return fmt.Errorf("%w: nbits (%d) must be an integer multiple of pattern_len (%d)",
			ErrConfiguration, c.Nbits, c.PatternLen)
	}
	if c.ModType == symbol.PAM4 && c.Nbits%2 != 0 {
		return fmt.Errorf("%w: PAM4 requires an even nbits, got %d", ErrConfiguration, c.Nbits)
	}
	if c.UIPs <= 0 {
		return fmt.Errorf("%w: ui_ps must be positive", ErrConfiguration)
	}
	return nil
}

// Timing is the set of derived timing quantities a scheme implies,
// computed as pure functions of (base UI, Nbits, eye_bits, Nspb, scheme)
// rather than mutated in place.
type Timing struct {
	UI      float64 // effective unit interval, seconds
	Ts      float64 // sample period, seconds
	Nui     int     // number of effective unit intervals spanned
	EyeUIs  int
	NspUI   int // samples per effective unit interval
}

// DerivedTiming computes the scheme-dependent timing quantities.
func (c Config) DerivedTiming() Timing {
	baseUI := c.UIPs * 1e-12
	ts := baseUI / float64(c.Nspb)

	if c.ModType == symbol.PAM4 {
		return Timing{
			UI:     2 * baseUI,
			Ts:     ts,
			Nui:    c.Nbits / 2,
			EyeUIs: c.EyeBits / 2,
			NspUI:  2 * c.Nspb,
		}
	}
	return Timing{
		UI:     baseUI,
		Ts:     ts,
		Nui:    c.Nbits,
		EyeUIs: c.EyeBits,
		NspUI:  c.Nspb,
	}
}

// DefaultConfig returns a loopback-scale configuration modelled on scenario
// S1, with nbits set to 2032 (16 × pattern_len) so that Validate accepts it.
func DefaultConfig() Config {
	return Config{
		Nbits: 2032, EyeBits: 254, Nspb: 32, PatternLen: 127,
		UIPs: 100, Vod: 0.4, Rn: 0, PNMag: 0, PNFreqMHz: 10,
		Rs: 50, CoutPF: 1, Rin: 50, CacUF: 1, CinPF: 1,
		R0: 10, W0: 2 * math.Pi * 1e9, Rdc: 1, Z0: 50, V0Rel: 0.667, Theta0: 0.02, LenCh: 0,
		Pretap: 0, Posttap: 0,
		RxBWGHz: 8, PeakFreqGHz: 4, PeakMagDB: 0,
		UseDFE: false, NTaps: 3, Gain: 0.05, DeltaTPs: 0.1, Alpha: 0.01,
		DecisionScaler: 0.4, NAve: 10, NLockAve: 500, RelLockTol: 0.05, LockSustain: 500,
		SumBWGHz: 0, SumIdeal: true,
		Thresh:  6,
		ModType: symbol.NRZ,
	}
}

// DFEConfig projects the pipeline Config's DFE knobs into a dfe.Config, for
// callers building a dfe.Runner (e.g. dfe.RemoteClient) outside pipeline.Run.
func (c Config) DFEConfig(t Timing) dfe.Config {
	return dfe.Config{
		NTaps:          c.NTaps,
		Gain:           c.Gain,
		DeltaT:         c.DeltaTPs * 1e-12,
		Alpha:          c.Alpha,
		UI:             t.UI,
		NspUI:          t.NspUI,
		DecisionScaler: c.DecisionScaler,
		ModType:        dfe.ModType(c.ModType),
		NAve:           c.NAve,
		NLockAve:       c.NLockAve,
		RelLockTol:     c.RelLockTol,
		LockSustain:    c.LockSustain,
		SumBWHz:        c.SumBWGHz * 1e9,
		SumIdeal:       c.SumIdeal,
	}
}
