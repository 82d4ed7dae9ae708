// Package data supplies market history and enriched ticker cards to the
// pipeline. Providers are interchangeable behind HistoryProvider so the
// CLI can run against a live bars API, a Redis-cached wrapper, or local
// fixture files.
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sawpanic/leveledge/internal/models"
)

// HistoryProvider serves OHLCV bars for one ticker at one resolution,
// oldest first, at most maxBars.
type HistoryProvider interface {
	Bars(ctx context.Context, ticker, interval string, maxBars int) ([]models.Bar, error)
}

// LoadCards reads enriched ticker cards from a JSON file. Accepts either
// a bare array or an object with a "cards" field.
func LoadCards(path string) ([]models.Card, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cards file: %w", err)
	}

	var cards []models.Card
	if err := json.Unmarshal(raw, &cards); err == nil {
		return cards, nil
	}

	var wrapped struct {
		Cards []models.Card `json:"cards"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse cards file %s: %w", path, err)
	}
	return wrapped.Cards, nil
}

// FileProvider serves bars from local JSON fixtures for offline runs and
// backtests. Files are named <ticker>_<interval>.json under the root.
type FileProvider struct {
	root string
}

// NewFileProvider creates a provider reading bar fixtures under root.
func NewFileProvider(root string) *FileProvider {
	return &FileProvider{root: root}
}

// Bars reads and sorts the fixture for ticker/interval.
func (p *FileProvider) Bars(_ context.Context, ticker, interval string, maxBars int) ([]models.Bar, error) {
	path := fmt.Sprintf("%s/%s_%s.json", p.root, ticker, interval)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bars fixture: %w", err)
	}

	var bars []models.Bar
	if err := json.Unmarshal(raw, &bars); err != nil {
		return nil, fmt.Errorf("failed to parse bars fixture %s: %w", path, err)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	if maxBars > 0 && len(bars) > maxBars {
		bars = bars[len(bars)-maxBars:]
	}
	return bars, nil
}
