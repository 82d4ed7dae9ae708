package levels

import (
	"sort"
	"testing"

	"github.com/sawpanic/leveledge/internal/models"
)

func TestFromCardFullStructure(t *testing.T) {
	card := &models.Card{
		Price: 100,
		Range: &models.RangeBounds{Low: 90, High: 110},
		Pivots: &models.PivotLevels{
			Support:    []float64{85, 95},
			Resistance: []float64{105, 115},
		},
		Fib: &models.FibLevels{Anchor: &models.RangeBounds{Low: 88, High: 112}},
	}

	lvls := FromCard(card)
	if len(lvls) != 6 {
		t.Fatalf("got %d levels, want 6: %+v", len(lvls), lvls)
	}
	if !sort.SliceIsSorted(lvls, func(i, j int) bool { return lvls[i].Price < lvls[j].Price }) {
		t.Error("levels not sorted ascending")
	}

	byID := map[string]Level{}
	for _, l := range lvls {
		byID[l.ID] = l
	}
	if byID["pivot_support"].Price != 95 {
		t.Errorf("pivot_support = %v, want nearest below (95)", byID["pivot_support"].Price)
	}
	if byID["pivot_resistance"].Price != 105 {
		t.Errorf("pivot_resistance = %v, want nearest above (105)", byID["pivot_resistance"].Price)
	}
}

func TestFromCardDedupesByPrice(t *testing.T) {
	card := &models.Card{
		Price: 100,
		Range: &models.RangeBounds{Low: 90, High: 110},
		Fib:   &models.FibLevels{Anchor: &models.RangeBounds{Low: 90, High: 110}},
	}
	lvls := FromCard(card)
	if len(lvls) != 2 {
		t.Fatalf("got %d levels, want 2 after dedupe: %+v", len(lvls), lvls)
	}
	// First occurrence (range) wins over the fib anchor duplicate.
	for _, l := range lvls {
		if l.ID == "fib_anchor_low" || l.ID == "fib_anchor_high" {
			t.Errorf("duplicate fib level %q survived", l.ID)
		}
	}
}

func TestNext(t *testing.T) {
	lvls := []Level{
		{ID: "a", Price: 90, Kind: KindSupport},
		{ID: "b", Price: 95, Kind: KindSupport},
		{ID: "c", Price: 105, Kind: KindResistance},
		{ID: "d", Price: 110, Kind: KindResistance},
	}

	up, down := Next(lvls, 100)
	if up == nil || up.Price != 105 {
		t.Errorf("up = %+v, want 105", up)
	}
	if down == nil || down.Price != 95 {
		t.Errorf("down = %+v, want 95", down)
	}
}

func TestNextOneSided(t *testing.T) {
	lvls := []Level{{ID: "a", Price: 90, Kind: KindSupport}}

	up, down := Next(lvls, 100)
	if up != nil {
		t.Errorf("up = %+v, want nil", up)
	}
	if down == nil || down.Price != 90 {
		t.Errorf("down = %+v, want 90", down)
	}

	up, down = Next(nil, 100)
	if up != nil || down != nil {
		t.Error("empty ladder should yield nil on both sides")
	}
}
