package score

// Stop ladder construction: candidate stop levels and their EV scoring.

import (
	"github.com/sawpanic/leveledge/internal/models"
)

// EVSentinel marks a ladder row with non-positive reward:risk. Sentinel
// rows sort last and are never chosen over a finite-EV alternative.
const EVSentinel = -999.0

// wilsonZ is the z value for the 95% interval used in row confidence.
const wilsonZ = 1.96

// LadderRow is one scored stop candidate.
type LadderRow struct {
	Name          string   `json:"name"`
	StopPrice     float64  `json:"stop_price"`
	Probability   float64  `json:"probability"`
	Confidence    float64  `json:"confidence"`
	RewardRisk    float64  `json:"reward_risk"`
	ExpectedValue float64  `json:"expected_value"`
	Why           []string `json:"why"`
}

// OutcomeLookup resolves an empirical touch probability for a state
// bucket and stop/target geometry. Implementations are injected by the
// caller (e.g. the postgres outcomes repository); ok=false means no
// history is available and the base probability stands.
type OutcomeLookup func(bucket StateBucket, entry, target, stop float64) (prob float64, samples int, why []string, ok bool)

type stopCandidate struct {
	name string
	stop float64
	why  []string
}

// stopCandidates enumerates the candidate stops for a card: the existing
// plan stop, the structural range low, and 1.5/2.5 ATR distances below
// entry. Non-finite candidates and candidates at or above entry are
// dropped; duplicate names keep the first occurrence.
func stopCandidates(card *models.Card) []stopCandidate {
	entry, ok := card.EntryRef()
	if !ok {
		return nil
	}

	var raw []stopCandidate
	if stop, ok := card.PlanStop(); ok {
		raw = append(raw, stopCandidate{"SL_plan", stop, []string{"plan stop (structure/ATR)"}})
	}
	if card.Range != nil && isFinite(card.Range.Low) {
		raw = append(raw, stopCandidate{"SL_range_low", card.Range.Low, []string{"range low invalidation"}})
	}
	if card.ATR14 > 0 && isFinite(card.ATR14) {
		raw = append(raw,
			stopCandidate{"SL_atr_1_5", entry - 1.5*card.ATR14, []string{"entry - 1.5*ATR (tighter)"}},
			stopCandidate{"SL_atr_2_5", entry - 2.5*card.ATR14, []string{"entry - 2.5*ATR (wider)"}},
		)
	}

	seen := make(map[string]bool, len(raw))
	out := make([]stopCandidate, 0, len(raw))
	for _, c := range raw {
		if !isFinite(c.stop) || c.stop >= entry {
			continue
		}
		if seen[c.name] {
			continue
		}
		seen[c.name] = true
		out = append(out, c)
	}
	return out
}

// scoreLadderRow scores one candidate: probability (base or looked-up),
// Wilson-CI confidence, reward:risk, and expected value.
func scoreLadderRow(c stopCandidate, baseProb float64, baseWhy []string, bucket StateBucket, entry, target float64, lookup OutcomeLookup) LadderRow {
	p := baseProb
	n := 0
	why := append(append([]string{}, baseWhy...), c.why...)

	if lookup != nil {
		if lp, ln, lwhy, ok := lookup(bucket, entry, target, c.stop); ok {
			p = Clamp(lp, 0.01, 0.99)
			n = ln
			why = append(append([]string{}, lwhy...), c.why...)
		}
	}

	lo, hi := WilsonCI(p, maxInt(n, 1), wilsonZ)
	conf := ConfidenceFromCI(lo, hi)

	risk := entry - c.stop
	reward := target - entry
	rr := 0.0
	if risk > 0 && reward > 0 {
		rr = reward / risk
	}
	ev := EVSentinel
	if rr > 0 {
		ev = p*rr - (1 - p)
	}

	return LadderRow{
		Name:          c.name,
		StopPrice:     c.stop,
		Probability:   p,
		Confidence:    conf,
		RewardRisk:    rr,
		ExpectedValue: ev,
		Why:           why,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
