package models

import (
	"math"
	"time"
)

// Bar is a single OHLCV bar at some resolution.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// RangeBounds is a low/high price pair (structural range, fib anchor, fair value band).
type RangeBounds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// PivotLevels holds pivot-derived support and resistance prices.
type PivotLevels struct {
	Support    []float64 `json:"support"`
	Resistance []float64 `json:"resistance"`
}

// FibLevels carries the fib anchor used for level derivation.
type FibLevels struct {
	Anchor *RangeBounds `json:"anchor,omitempty"`
}

// EntrySpec describes how the plan enters: a single trigger price or a zone.
type EntrySpec struct {
	Type    string       `json:"type"`
	Trigger *float64     `json:"trigger,omitempty"`
	Zone    *RangeBounds `json:"zone,omitempty"`
}

// Target is a single take-profit level in the plan.
type Target struct {
	Price float64 `json:"price"`
	Label string  `json:"label,omitempty"`
}

// TradePlan is the entry/stop/targets block on a card.
type TradePlan struct {
	Entry   *EntrySpec `json:"entry,omitempty"`
	Stop    *float64   `json:"stop,omitempty"`
	Targets []Target   `json:"targets,omitempty"`
}

// RuleStats holds realized statistics for a learned rule at one horizon.
type RuleStats struct {
	WinRate *float64 `json:"win_rate,omitempty"`
	Samples int      `json:"samples"`
}

// LearnedRule is one entry of the card's learned rule ranking.
type LearnedRule struct {
	Rule string     `json:"rule"`
	H60  *RuleStats `json:"h60,omitempty"`
}

// WhaleBlock is a single large print presumed institutional.
type WhaleBlock struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// Card is the per-ticker signal snapshot produced once per scan cycle.
// It is immutable within a pipeline pass; absent fields default rather
// than fail (see accessor methods).
type Card struct {
	Ticker string    `json:"ticker"`
	AsOf   time.Time `json:"as_of"`
	Price  float64   `json:"price"`

	VolZ        float64 `json:"vol_z"`
	RSVsSPY     float64 `json:"rs_60d_vs_spy"`
	ATR14       float64 `json:"atr_14"`
	VolumeTrend string  `json:"volume_trend,omitempty"`

	Range     *RangeBounds `json:"range,omitempty"`
	Pivots    *PivotLevels `json:"pivots,omitempty"`
	Fib       *FibLevels   `json:"fib,omitempty"`
	FairValue *RangeBounds `json:"fv,omitempty"`
	Plan      *TradePlan   `json:"plan,omitempty"`

	Labels       []string      `json:"labels,omitempty"`
	LearnedRules []LearnedRule `json:"learned_top_rules,omitempty"`

	SentimentScore *float64 `json:"sentiment_score,omitempty"`
	SentimentConf  *float64 `json:"sentiment_conf,omitempty"`

	WhaleBuyBlocks  []WhaleBlock `json:"whale_buy_blocks,omitempty"`
	WhaleSellBlocks []WhaleBlock `json:"whale_sell_blocks,omitempty"`

	// Breakout-credibility inputs.
	BrokenResistance      bool    `json:"broken_resistance"`
	ClosedAboveResistance bool    `json:"closed_above_resistance"`
	DailySignal           bool    `json:"daily_signal"`
	H4Signal              bool    `json:"h4_signal"`
	H1Signal              bool    `json:"h1_signal"`
	TrendDirection        string  `json:"trend_direction,omitempty"`
	MoveSize              float64 `json:"move_size"`
	ATR20                 float64 `json:"atr_20"`
	IVRank                float64 `json:"iv_rank"`
	NearestSupport        float64 `json:"nearest_support"`
	ChartPattern          string  `json:"chart_pattern,omitempty"`
	PatternComplete       bool    `json:"pattern_complete"`
}

// HasLabel reports whether the card carries the given label tag.
func (c *Card) HasLabel(label string) bool {
	for _, l := range c.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// EntryRef resolves the reference entry price: plan trigger, zone midpoint,
// then last price. The bool is false when no entry can be resolved.
func (c *Card) EntryRef() (float64, bool) {
	if c.Plan != nil && c.Plan.Entry != nil {
		e := c.Plan.Entry
		if e.Trigger != nil && isFinite(*e.Trigger) {
			return *e.Trigger, true
		}
		if e.Zone != nil && isFinite(e.Zone.Low) && isFinite(e.Zone.High) {
			return (e.Zone.Low + e.Zone.High) / 2.0, true
		}
	}
	if c.Price > 0 && isFinite(c.Price) {
		return c.Price, true
	}
	return 0, false
}

// EntryStyle returns the plan entry type, or "unknown" when absent.
func (c *Card) EntryStyle() string {
	if c.Plan != nil && c.Plan.Entry != nil && c.Plan.Entry.Type != "" {
		return c.Plan.Entry.Type
	}
	return "unknown"
}

// FirstTarget resolves the first take-profit price from the plan.
func (c *Card) FirstTarget() (float64, bool) {
	if c.Plan == nil || len(c.Plan.Targets) == 0 {
		return 0, false
	}
	tp := c.Plan.Targets[0].Price
	if !isFinite(tp) || tp <= 0 {
		return 0, false
	}
	return tp, true
}

// PlanStop returns the plan's invalidation stop, if present and finite.
func (c *Card) PlanStop() (float64, bool) {
	if c.Plan == nil || c.Plan.Stop == nil || !isFinite(*c.Plan.Stop) {
		return 0, false
	}
	return *c.Plan.Stop, true
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
