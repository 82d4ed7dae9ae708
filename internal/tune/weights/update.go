package weights

import (
	"strings"
)

// Outcome is one realized trade result fed to the learning pass. Why is
// the stored explanation trail from the original decision; factor names
// are recovered from its "name: ..." lines.
type Outcome struct {
	IsWin bool
	Why   []string
}

// Learning guardrails. Deliberately conservative to avoid overfitting a
// thin outcomes table.
const (
	learnStep   = 0.05
	learnCap    = 0.20
	learnDecay  = 0.995
	minSamples  = 30
	weightFloor = 0.2
	weightCeil  = 3.0
)

// Update returns a new weight map adjusted by realized outcomes. Existing
// factor weights decay toward zero influence; factors whose win rate
// diverges from the baseline move by a clamped delta. Factors with fewer
// than minSamples outcomes are left untouched.
func Update(m Map, outcomes []Outcome) Map {
	out := m.Clone()
	if len(outcomes) == 0 {
		return out
	}

	wins := 0
	for _, o := range outcomes {
		if o.IsWin {
			wins++
		}
	}
	baseWin := float64(wins) / float64(len(outcomes))

	factorWins := make(map[string]int)
	factorTotal := make(map[string]int)
	for _, o := range outcomes {
		fired := make(map[string]bool)
		for _, line := range o.Why {
			idx := strings.Index(line, ":")
			if idx <= 0 {
				continue
			}
			fired[strings.TrimSpace(line[:idx])] = true
		}
		for f := range fired {
			factorTotal[f]++
			if o.IsWin {
				factorWins[f]++
			}
		}
	}

	for k, v := range out {
		if strings.HasPrefix(k, factorPrefix) {
			out[k] = v * learnDecay
		}
	}

	for f, total := range factorTotal {
		if total < minSamples {
			continue
		}
		wr := float64(factorWins[f]) / float64(total)
		delta := clamp((wr-baseWin)*learnStep*10.0, -learnCap, learnCap)
		key := factorPrefix + f
		cur, ok := out[key]
		if !ok {
			cur = 1.0
		}
		out[key] = clamp(cur+delta, weightFloor, weightCeil)
	}

	return out
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
