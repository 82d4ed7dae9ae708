package regime

import (
	"math"
	"testing"
)

func TestClassifyTrend(t *testing.T) {
	cls := Classify(0.0, 1.0, 1.0)
	if cls.Regime != Trend {
		t.Errorf("regime = %v, want trend", cls.Regime)
	}
	if math.Abs(cls.Scores.Trend-1.0) > 1e-9 {
		t.Errorf("trend score = %v, want 1.0", cls.Scores.Trend)
	}
	if cls.Confidence != cls.Scores.Trend {
		t.Errorf("confidence %v != winning score %v", cls.Confidence, cls.Scores.Trend)
	}
}

func TestClassifyChop(t *testing.T) {
	cls := Classify(1.0, 0.0, 0.0)
	if cls.Regime != Chop {
		t.Errorf("regime = %v, want chop", cls.Regime)
	}
	if math.Abs(cls.Scores.Chop-1.0) > 1e-9 {
		t.Errorf("chop score = %v, want 1.0", cls.Scores.Chop)
	}
}

func TestClassifyTransitionOnBalance(t *testing.T) {
	// Balanced evidence: trend and chop tie, transition wins.
	cls := Classify(0.5, 0.5, 0.5)
	if cls.Regime != Transition {
		t.Errorf("regime = %v, want transition", cls.Regime)
	}
	if math.Abs(cls.Scores.Transition-1.0) > 1e-9 {
		t.Errorf("transition score = %v, want 1.0", cls.Scores.Transition)
	}
}

func TestRegimeString(t *testing.T) {
	tests := []struct {
		r    Regime
		want string
	}{
		{Trend, "trend"},
		{Chop, "chop"},
		{Transition, "transition"},
		{Regime(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.r, got, tt.want)
		}
	}
}
