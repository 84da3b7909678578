package pipeline

import (
	"errors"
	"testing"
)

func TestValidateRejectsShortPatternLen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PatternLen = 2
	err := cfg.Validate()
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestValidateRejectsNonIntegralPatternRatio(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nbits = 2001
	cfg.PatternLen = 127
	err := cfg.Validate()
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestDerivedTimingPAM4DoublesUI(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModType = 2 // PAM4
	cfg.Nbits = 4000
	baseTiming := cfg.DerivedTiming()
	cfg.ModType = 0
	nrzTiming := cfg.DerivedTiming()
	if baseTiming.UI != 2*nrzTiming.UI {
		t.Fatalf("PAM4 UI = %g, want 2x NRZ UI %g", baseTiming.UI, nrzTiming.UI)
	}
	if nrzTiming.Nui != cfg.Nbits {
		t.Fatalf("NRZ Nui should equal Nbits")
	}
}

func TestRunLoopbackProducesNearZeroDCD(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nbits = 508
	cfg.PatternLen = 127
	cfg.Rn = 0
	cfg.PNMag = 0
	cfg.LenCh = 0
	cfg.Pretap = 0
	cfg.Posttap = 0
	cfg.PeakMagDB = 0

	res, err := Run(cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("expected a non-empty run ID")
	}
	ctle, ok := res.StageByName("ctle")
	if !ok {
		t.Fatal("expected a ctle stage")
	}
	if ctle.Jitter.DCD > 5e-12 {
		t.Fatalf("expected near-zero DCD on loopback, got %g", ctle.Jitter.DCD)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nbits = 0
	_, err := Run(cfg, nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
