package score

import (
	"fmt"

	"github.com/sawpanic/leveledge/internal/models"
)

// Factor is one piece of bounded evidence extracted from a card. Value is
// directional in [-1,1], Confidence scales its logit contribution.
type Factor struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
	Why        string  `json:"why"`
}

// ExtractFactors converts a card into the ordered factor list. Missing
// inputs degrade to zero-value factors rather than being dropped, so the
// explanation trail always accounts for every factor.
func ExtractFactors(card *models.Card) []Factor {
	out := make([]Factor, 0, 6)

	out = append(out, Factor{
		Name:       "volume_anomaly",
		Value:      Clamp((card.VolZ-0.5)/2.0, -1, 1),
		Confidence: 0.9,
		Why:        fmt.Sprintf("vol_z=%.2f", card.VolZ),
	})

	out = append(out, Factor{
		Name:       "relative_strength",
		Value:      Clamp(card.RSVsSPY/0.15, -1, 1),
		Confidence: 0.9,
		Why:        fmt.Sprintf("rs_vs_spy=%.4f", card.RSVsSPY),
	})

	out = append(out, learnedRuleFactor(card))
	out = append(out, fvExtensionFactor(card))

	if card.HasLabel(ReadyConfirmedLabel) {
		out = append(out, Factor{Name: "structure_breakout", Value: 0.8, Confidence: 0.6, Why: ReadyConfirmedLabel})
	} else {
		out = append(out, Factor{Name: "structure_breakout", Value: 0.0, Confidence: 0.6, Why: "not confirmed"})
	}

	if card.SentimentScore != nil {
		conf := 0.5
		if card.SentimentConf != nil {
			conf = *card.SentimentConf
		}
		out = append(out, Factor{
			Name:       "sentiment",
			Value:      Clamp(*card.SentimentScore, -1, 1),
			Confidence: conf,
			Why:        fmt.Sprintf("sent=%.2f", *card.SentimentScore),
		})
	}

	return out
}

func learnedRuleFactor(card *models.Card) Factor {
	if len(card.LearnedRules) == 0 {
		return Factor{Name: "learned_rule_edge", Value: 0, Confidence: 0.2, Why: "no learned rules"}
	}
	best := card.LearnedRules[0]
	if best.H60 == nil || best.H60.WinRate == nil {
		return Factor{Name: "learned_rule_edge", Value: 0, Confidence: 0.2, Why: "no win_rate in learned rule"}
	}
	wr := *best.H60.WinRate
	n := best.H60.Samples
	conf := Clamp(minFloat(1.0, float64(n)/80.0), 0.1, 1.0)
	return Factor{
		Name:       "learned_rule_edge",
		Value:      Clamp((wr-0.5)/0.2, -1, 1),
		Confidence: conf,
		Why:        fmt.Sprintf("rule=%s wr60=%.2f n=%d", best.Rule, wr, n),
	}
}

func fvExtensionFactor(card *models.Card) Factor {
	if card.FairValue == nil || card.Price <= 0 || !isFinite(card.Price) || !isFinite(card.FairValue.High) {
		return Factor{Name: "fv_extension", Value: 0, Confidence: 0.0, Why: "missing fv/price"}
	}
	ext := (card.Price - card.FairValue.High) / maxFloat(card.Price, probEpsilon)
	return Factor{
		Name:       "fv_extension",
		Value:      Clamp(-ext*6.0, -1, 1),
		Confidence: 0.7,
		Why:        fmt.Sprintf("price=%.2f fv_high=%.2f", card.Price, card.FairValue.High),
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
