// Package risk converts final confidence into a bounded position size:
// quarter-Kelly against fixed 1:3 payoff odds, with a hard floor and cap
// on the equity fraction at risk.
package risk

import "math"

// Sizing bounds. The cap limits any single trade to 2% of equity no
// matter how strong the signal; the floor keeps a tracked position open
// even on weak confidence.
const (
	kellyFraction = 0.25
	payoffOdds    = 3.0
	riskFloor     = 0.005
	riskCap       = 0.02
)

// Position is the sized trade.
type Position struct {
	Shares      int64   `json:"shares"`
	Target3x    float64 `json:"target_3x"`
	RiskPercent float64 `json:"risk_percent"`
}

// Size computes the quarter-Kelly position. Confidence is on the 0-100
// scale; a non-positive risk per share yields zero shares.
func Size(accountEquity, entry, stop, confidence float64) Position {
	riskPerShare := math.Abs(entry - stop)
	target3x := entry + riskPerShare*payoffOdds

	p := confidence / 100.0
	kelly := (payoffOdds*p - (1 - p)) / payoffOdds

	safe := kelly * kellyFraction
	if safe > riskCap {
		safe = riskCap
	}
	if safe < riskFloor {
		safe = riskFloor
	}

	var shares int64
	if riskPerShare > 0 {
		shares = int64(accountEquity * safe / riskPerShare)
	}

	return Position{
		Shares:      shares,
		Target3x:    target3x,
		RiskPercent: safe * 100.0,
	}
}
