package whale

import (
	"testing"
)

func TestValidateVolumeGate(t *testing.T) {
	r := NewValidator().Validate(Input{
		Entry:     100,
		VolumeZ:   1.5,
		BuyBlocks: []Block{{Price: 100, Size: 600_000}},
	})
	if r.Verdict != Deny {
		t.Errorf("verdict = %v, want DENY below the volume gate", r.Verdict)
	}
	if r.Boost != -0.15 {
		t.Errorf("boost = %v, want -0.15", r.Boost)
	}
	if r.Reason == "" {
		t.Error("deny without a reason")
	}
}

func TestValidateSellPressureDenies(t *testing.T) {
	r := NewValidator().Validate(Input{
		Entry:   100,
		VolumeZ: 3.0,
		SellBlocks: []Block{
			{Price: 100.2, Size: 200_000},
			{Price: 99.8, Size: 150_000},
		},
		BuyBlocks: []Block{{Price: 100, Size: 80_000}},
	})
	if r.Verdict != Deny {
		t.Errorf("verdict = %v, want DENY when sells outnumber buys", r.Verdict)
	}
}

func TestValidateConfirm(t *testing.T) {
	r := NewValidator().Validate(Input{
		Entry:   100,
		VolumeZ: 3.0,
		BuyBlocks: []Block{
			{Price: 100.1, Size: 600_000},
			{Price: 99.9, Size: 550_000},
		},
	})
	if r.Verdict != Confirm {
		t.Fatalf("verdict = %v, want CONFIRM", r.Verdict)
	}
	if r.Conviction != 6.0 {
		t.Errorf("conviction = %v, want 6.0 (two large blocks)", r.Conviction)
	}
	if r.Credibility != 0.95 {
		t.Errorf("credibility = %v, want 0.95", r.Credibility)
	}
	if r.AlignmentScore != 1.0 || r.Alignment != "PERFECT" {
		t.Errorf("alignment = %v/%q", r.AlignmentScore, r.Alignment)
	}
	if r.LargestBuy != 600_000 {
		t.Errorf("largest buy = %v", r.LargestBuy)
	}
}

func TestValidateWatch(t *testing.T) {
	r := NewValidator().Validate(Input{
		Entry:     100,
		VolumeZ:   2.5,
		BuyBlocks: []Block{{Price: 100, Size: 600_000}},
	})
	if r.Verdict != Watch {
		t.Errorf("verdict = %v, want WATCH (conviction 3.0)", r.Verdict)
	}
	if r.Boost != 0.05 {
		t.Errorf("boost = %v, want 0.05", r.Boost)
	}
}

func TestValidateNeutralWithoutBlocks(t *testing.T) {
	r := NewValidator().Validate(Input{Entry: 100, VolumeZ: 3.0})
	if r.Verdict != Neutral {
		t.Errorf("verdict = %v, want NEUTRAL", r.Verdict)
	}
	if r.AlignmentScore != 0.5 {
		t.Errorf("empty alignment = %v, want 0.5", r.AlignmentScore)
	}
	if r.Credibility != 0.40 {
		t.Errorf("credibility = %v, want 0.40", r.Credibility)
	}
}

func TestAlignmentToleranceFilter(t *testing.T) {
	// 103 is 3% from entry, outside the 2% tolerance.
	r := NewValidator().Validate(Input{
		Entry:     100,
		VolumeZ:   3.0,
		BuyBlocks: []Block{{Price: 103, Size: 600_000}},
	})
	if r.BuyBlocks != 0 {
		t.Errorf("blocks aligned = %d, want 0", r.BuyBlocks)
	}
}

func TestBlockWeightTiers(t *testing.T) {
	tests := []struct {
		size float64
		want float64
	}{
		{600_000, 3.0},
		{500_000, 3.0},
		{150_000, 2.0},
		{60_000, 1.0},
		{10_000, 0.3},
	}
	for _, tt := range tests {
		if got := blockWeight(tt.size); got != tt.want {
			t.Errorf("blockWeight(%v) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestApplyBoostCap(t *testing.T) {
	boosted := ApplyBoost(0.90, Result{Verdict: Confirm, Boost: 0.20, Conviction: 8})
	if boosted.FinalProbability != 0.98 {
		t.Errorf("final = %v, want capped 0.98", boosted.FinalProbability)
	}
	if boosted.Tier != TierHigh {
		t.Errorf("tier = %v, want HIGH at conviction 8", boosted.Tier)
	}
}

func TestApplyBoostFloorsAtZero(t *testing.T) {
	boosted := ApplyBoost(0.05, Result{Verdict: Deny, Boost: -0.15})
	if boosted.FinalProbability != 0 {
		t.Errorf("final = %v, want floored at 0", boosted.FinalProbability)
	}
	if boosted.Tier != TierLow {
		t.Errorf("tier = %v, want LOW", boosted.Tier)
	}
}

func TestApplyBoostTiers(t *testing.T) {
	if got := ApplyBoost(0.5, Result{Conviction: 5}).Tier; got != TierMedium {
		t.Errorf("conviction 5 tier = %v, want MEDIUM", got)
	}
	if got := ApplyBoost(0.5, Result{Conviction: 2}).Tier; got != TierLow {
		t.Errorf("conviction 2 tier = %v, want LOW", got)
	}
}
