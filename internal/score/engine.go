// Package score implements the factor-weighted logit scoring engine and
// the stop-ladder expected-value optimizer. Scoring is a pure function of
// the card and a loaded weight map: no I/O, no hidden state.
package score

import (
	"fmt"
	"sort"
	"time"

	"github.com/sawpanic/leveledge/internal/models"
	"github.com/sawpanic/leveledge/internal/tune/weights"
)

// Decision is the scored result for one card: base probability from the
// factor engine, the full stop ladder sorted by expected value, and the
// chosen (max-EV) stop.
type Decision struct {
	Probability float64     `json:"probability"`
	Confidence  float64     `json:"confidence"`
	StopLadder  []LadderRow `json:"stop_ladder"`
	ChosenStop  *LadderRow  `json:"chosen_stop,omitempty"`
	Why         []string    `json:"why"`
	RuntimeMS   int64       `json:"runtime_ms"`
}

// Engine combines a prior and weighted factor contributions in logit
// space, then ranks stop candidates by expected value.
type Engine struct {
	weights weights.Map
	lookup  OutcomeLookup
}

// NewEngine creates a scoring engine. The weight map must not be mutated
// while the engine is in use; lookup may be nil.
func NewEngine(w weights.Map, lookup OutcomeLookup) *Engine {
	if w == nil {
		w = weights.Defaults()
	}
	return &Engine{weights: w, lookup: lookup}
}

// ScoreCard scores a single card. Missing entry or target yields a
// zero-probability, zero-confidence decision with an explanatory trail
// instead of an error.
func (e *Engine) ScoreCard(card *models.Card) Decision {
	start := time.Now()

	entry, okEntry := card.EntryRef()
	target, okTarget := card.FirstTarget()
	if !okEntry || !okTarget {
		return Decision{
			Probability: 0,
			Confidence:  0,
			StopLadder:  []LadderRow{},
			Why:         []string{"missing entry/TP1"},
			RuntimeMS:   time.Since(start).Milliseconds(),
		}
	}

	bucket := BucketCard(card)
	factors := ExtractFactors(card)

	prior := Clamp(e.weights.Prior(), 0.05, 0.95)
	lo := Logit(prior)

	why := []string{fmt.Sprintf("state=%s", bucket)}
	for _, f := range factors {
		w := e.weights.Factor(f.Name)
		lo += Clamp(f.Value, -1, 1) * Clamp(f.Confidence, 0, 1) * w
		why = append(why, fmt.Sprintf("%s: v=%.2f c=%.2f w=%.2f (%s)", f.Name, f.Value, f.Confidence, w, f.Why))
	}
	baseProb := Sigmoid(lo)

	ladder := make([]LadderRow, 0, 4)
	for _, c := range stopCandidates(card) {
		ladder = append(ladder, scoreLadderRow(c, baseProb, why, bucket, entry, target, e.lookup))
	}
	sort.SliceStable(ladder, func(i, j int) bool {
		return ladder[i].ExpectedValue > ladder[j].ExpectedValue
	})

	if len(ladder) == 0 {
		return Decision{
			Probability: baseProb,
			Confidence:  0,
			StopLadder:  ladder,
			Why:         truncate(why, 6),
			RuntimeMS:   time.Since(start).Milliseconds(),
		}
	}

	chosen := ladder[0]
	return Decision{
		Probability: chosen.Probability,
		Confidence:  chosen.Confidence,
		StopLadder:  ladder,
		ChosenStop:  &chosen,
		Why:         truncate(chosen.Why, 8),
		RuntimeMS:   time.Since(start).Milliseconds(),
	}
}

func truncate(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[:n]
}
