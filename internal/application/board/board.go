// Package board builds the level-to-level odds board: for each trading
// mode, the probability of touching the next upside level before the
// next downside level, estimated from historical paths at that mode's
// resolution.
package board

import (
	"github.com/sawpanic/leveledge/internal/domain/barrier"
	"github.com/sawpanic/leveledge/internal/domain/features"
	"github.com/sawpanic/leveledge/internal/domain/levels"
	"github.com/sawpanic/leveledge/internal/domain/regime"
	"github.com/sawpanic/leveledge/internal/models"
)

const (
	// minModeBars is the history floor below which a mode is skipped.
	minModeBars = 80
	// synthMoveFloor floors the synthesized barrier distance at 1% of
	// price so a dead-flat history can't place the barrier on top of it.
	synthMoveFloor = 0.01
	// defaultStride samples every third window start.
	defaultStride = 3
)

// BarrierRef names one side of the evaluated pair; ID is "derived" when
// the level was synthesized from the excursion distribution.
type BarrierRef struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
}

// ModeResult is the odds-board row for one mode.
type ModeResult struct {
	Mode          string                `json:"mode"`
	Interval      string                `json:"interval"`
	LookaheadBars int                   `json:"lookahead_bars"`
	Samples       int                   `json:"n_samples"`
	Regime        regime.Classification `json:"regime"`
	NextUp        BarrierRef            `json:"next_up"`
	NextDown      BarrierRef            `json:"next_down"`
	Odds          barrier.Odds          `json:"probs"`
	Moves         barrier.MoveStats     `json:"moves"`
	Confidence    float64               `json:"confidence"`
	Features      map[string]float64    `json:"features"`
}

// Board is the complete odds board for one ticker.
type Board struct {
	Ticker string                `json:"ticker"`
	Price  float64               `json:"price"`
	Levels []levels.Level        `json:"levels"`
	Modes  map[string]ModeResult `json:"modes"`
}

// Builder assembles odds boards from card structure plus per-mode bars.
type Builder struct {
	fe     *features.Engine
	stride int
}

// NewBuilder creates a board builder with the default sampling stride.
func NewBuilder() *Builder {
	return &Builder{fe: features.NewEngine(), stride: defaultStride}
}

// Build assembles the board. history supplies bars per mode interval;
// modes with nil or short history are skipped, and a card with no levels
// on either side yields a board with empty Modes.
func (b *Builder) Build(card *models.Card, history func(interval string, maxBars int) []models.Bar) Board {
	lvls := levels.FromCard(card)
	up, down := levels.Next(lvls, card.Price)

	out := Board{
		Ticker: card.Ticker,
		Price:  card.Price,
		Levels: lvls,
		Modes:  make(map[string]ModeResult),
	}
	if card.Ticker == "" || card.Price <= 0 || (up == nil && down == nil) {
		return out
	}

	for _, mode := range Modes {
		bars := history(mode.Interval, mode.MaxHistoryBars)
		if result, ok := b.buildMode(card, bars, mode, up, down); ok {
			out.Modes[mode.Name] = result
		}
	}
	return out
}

func (b *Builder) buildMode(card *models.Card, bars []models.Bar, mode ModeDef, up, down *levels.Level) (ModeResult, bool) {
	if len(bars) < minModeBars {
		return ModeResult{}, false
	}

	snap := b.fe.Compute(bars)
	cls := regime.Classify(snap.Compression, snap.TrendEff, snap.RVRatio)
	moves := barrier.ExpectedMoves(bars, mode.LookaheadBars, b.stride)

	// Synthesize the missing side from the historical median excursion.
	upRef := BarrierRef{ID: "derived"}
	if up != nil {
		upRef = BarrierRef{ID: up.ID, Price: up.Price}
	} else {
		move := moves.MedianUpPct
		if move < synthMoveFloor {
			move = synthMoveFloor
		}
		upRef.Price = card.Price * (1.0 + move)
	}
	downRef := BarrierRef{ID: "derived"}
	if down != nil {
		downRef = BarrierRef{ID: down.ID, Price: down.Price}
	} else {
		move := moves.MedianDownPct
		if move < synthMoveFloor {
			move = synthMoveFloor
		}
		downRef.Price = card.Price * (1.0 - move)
	}

	odds := barrier.Estimate(bars, upRef.Price, downRef.Price, mode.LookaheadBars, b.stride)

	// Confidence blends sample depth, regime confidence, and stability
	// (windows that touch both barriers undermine the estimate).
	nConf := float64(odds.Samples) / 800.0
	if nConf > 1 {
		nConf = 1
	}
	stability := 1.0 - odds.PBoth
	if stability < 0 {
		stability = 0
	}
	confidence := 0.45*nConf + 0.35*cls.Confidence + 0.20*stability

	return ModeResult{
		Mode:          mode.Name,
		Interval:      mode.Interval,
		LookaheadBars: mode.LookaheadBars,
		Samples:       odds.Samples,
		Regime:        cls,
		NextUp:        upRef,
		NextDown:      downRef,
		Odds:          odds,
		Moves:         moves,
		Confidence:    confidence,
		Features:      snap.Map(mode.Interval + "_"),
	}, true
}
