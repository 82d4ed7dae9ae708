package score

import (
	"fmt"

	"github.com/sawpanic/leveledge/internal/models"
)

// ReadyConfirmedLabel marks a card whose structure breakout is confirmed.
const ReadyConfirmedLabel = "READY_CONFIRMED"

// StateBucket is the coarse market-state key used for empirical outcome
// lookups. Two cards in the same bucket are treated as comparable setups.
type StateBucket struct {
	Style string `json:"style"`
	Vol   string `json:"vol"`
	RS    string `json:"rs"`
	Stage string `json:"stage"`
}

// Key renders the bucket as a stable lookup key.
func (b StateBucket) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", b.Style, b.Vol, b.RS, b.Stage)
}

func (b StateBucket) String() string {
	return fmt.Sprintf("style=%s vol=%s rs=%s stage=%s", b.Style, b.Vol, b.RS, b.Stage)
}

// band is one rung of an ordered threshold ladder: the first rung whose
// Min the value reaches wins.
type band struct {
	Min  float64
	Name string
}

var volBands = []band{
	{2.5, "vol_extreme"},
	{1.2, "vol_high"},
	{0.4, "vol_normal"},
}

const volFloor = "vol_low"

func bucketVol(z float64) string {
	for _, b := range volBands {
		if z >= b.Min {
			return b.Name
		}
	}
	return volFloor
}

func bucketRS(rs float64) string {
	switch {
	case rs >= 0.12:
		return "rs_strong"
	case rs >= 0.05:
		return "rs_pos"
	case rs <= -0.05:
		return "rs_neg"
	default:
		return "rs_flat"
	}
}

// BucketCard derives the state bucket for a card.
func BucketCard(card *models.Card) StateBucket {
	stage := "early_watch"
	if card.HasLabel(ReadyConfirmedLabel) {
		stage = "ready"
	}
	return StateBucket{
		Style: card.EntryStyle(),
		Vol:   bucketVol(card.VolZ),
		RS:    bucketRS(card.RSVsSPY),
		Stage: stage,
	}
}
