// Package levels derives candidate support/resistance levels from a
// card's structural data. Levels are questions, not rules: the barrier
// estimator answers how likely each is to be touched.
package levels

import (
	"math"
	"sort"

	"github.com/sawpanic/leveledge/internal/models"
)

// Level kinds.
const (
	KindSupport    = "support"
	KindResistance = "resistance"
)

// Level is one candidate barrier price.
type Level struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
	Kind  string  `json:"kind"`
}

// FromCard derives a compact level ladder from the card's range, nearest
// pivots, and fib anchor, in that priority order. Duplicate prices
// (rounded to cents) keep the first occurrence; the result is sorted
// ascending by price.
func FromCard(card *models.Card) []Level {
	price := card.Price

	var lvls []Level
	if card.Range != nil {
		if isFinite(card.Range.Low) {
			lvls = append(lvls, Level{ID: "range_low", Price: card.Range.Low, Kind: KindSupport})
		}
		if isFinite(card.Range.High) {
			lvls = append(lvls, Level{ID: "range_high", Price: card.Range.High, Kind: KindResistance})
		}
	}

	if card.Pivots != nil {
		if sup, ok := nearestBelow(card.Pivots.Support, price); ok {
			lvls = append(lvls, Level{ID: "pivot_support", Price: sup, Kind: KindSupport})
		}
		if res, ok := nearestAbove(card.Pivots.Resistance, price); ok {
			lvls = append(lvls, Level{ID: "pivot_resistance", Price: res, Kind: KindResistance})
		}
	}

	if card.Fib != nil && card.Fib.Anchor != nil {
		if isFinite(card.Fib.Anchor.Low) {
			lvls = append(lvls, Level{ID: "fib_anchor_low", Price: card.Fib.Anchor.Low, Kind: KindSupport})
		}
		if isFinite(card.Fib.Anchor.High) {
			lvls = append(lvls, Level{ID: "fib_anchor_high", Price: card.Fib.Anchor.High, Kind: KindResistance})
		}
	}

	seen := make(map[float64]bool, len(lvls))
	out := make([]Level, 0, len(lvls))
	for _, l := range lvls {
		key := math.Round(l.Price*100) / 100
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

// Next picks the immediate next up and next down levels around price.
// Either side may be nil when no level exists on that side.
func Next(lvls []Level, price float64) (up, down *Level) {
	for i := range lvls {
		l := lvls[i]
		if l.Price > price && (up == nil || l.Price < up.Price) {
			up = &lvls[i]
		}
		if l.Price < price && (down == nil || l.Price > down.Price) {
			down = &lvls[i]
		}
	}
	return up, down
}

func nearestBelow(xs []float64, price float64) (float64, bool) {
	best, found := 0.0, false
	for _, x := range xs {
		if isFinite(x) && x < price && (!found || x > best) {
			best, found = x, true
		}
	}
	return best, found
}

func nearestAbove(xs []float64, price float64) (float64, bool) {
	best, found := 0.0, false
	for _, x := range xs {
		if isFinite(x) && x > price && (!found || x < best) {
			best, found = x, true
		}
	}
	return best, found
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
