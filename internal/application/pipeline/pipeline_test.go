package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/sawpanic/leveledge/internal/models"
	"github.com/sawpanic/leveledge/internal/score"
)

func testCard(ticker string) *models.Card {
	trigger := 100.0
	stop := 92.0
	return &models.Card{
		Ticker:  ticker,
		AsOf:    time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC),
		Price:   100,
		VolZ:    2.5,
		RSVsSPY: 0.10,
		ATR14:   2.0,
		Labels:  []string{score.ReadyConfirmedLabel},
		Plan: &models.TradePlan{
			Entry:   &models.EntrySpec{Type: "breakout", Trigger: &trigger},
			Stop:    &stop,
			Targets: []models.Target{{Price: 110}},
		},
	}
}

func TestRunProducesFullRecord(t *testing.T) {
	pipe := New(nil, nil, Config{AccountEquity: 10_000, Workers: 1})
	record := pipe.Run(testCard("NVDA"))

	if record.RunID == "" {
		t.Error("empty run ID")
	}
	if record.Ticker != "NVDA" {
		t.Errorf("ticker = %q", record.Ticker)
	}
	if record.Base.Probability <= 0 {
		t.Errorf("base probability = %v", record.Base.Probability)
	}
	if record.FinalProbability != record.Final.FinalProbability {
		t.Error("FinalProbability diverges from the credibility-adjusted value")
	}
	if record.Position.Shares < 0 {
		t.Errorf("negative shares: %d", record.Position.Shares)
	}
	if len(record.Why) == 0 {
		t.Error("empty why trail")
	}
}

func TestAdjustmentOrderIsFixed(t *testing.T) {
	pipe := New(nil, nil, Config{AccountEquity: 10_000, Workers: 1})
	record := pipe.Run(testCard("NVDA"))

	// Whale boost applies to the base probability, then the credibility
	// multiplier applies to the boosted value.
	if record.WhaleProb.BaseProbability != record.Base.Probability {
		t.Errorf("whale stage base %v != engine probability %v",
			record.WhaleProb.BaseProbability, record.Base.Probability)
	}
	if record.Final.BaseProbability != record.WhaleProb.FinalProbability {
		t.Errorf("credibility stage base %v != whale-adjusted %v",
			record.Final.BaseProbability, record.WhaleProb.FinalProbability)
	}
}

func TestWhaleDenyLowersProbability(t *testing.T) {
	pipe := New(nil, nil, Config{AccountEquity: 10_000, Workers: 1})

	neutral := pipe.Run(testCard("NVDA"))

	denied := testCard("NVDA")
	denied.WhaleSellBlocks = []models.WhaleBlock{
		{Price: 100.1, Size: 600_000},
		{Price: 99.9, Size: 400_000},
	}
	deniedRecord := pipe.Run(denied)

	if deniedRecord.WhaleProb.FinalProbability >= neutral.WhaleProb.FinalProbability {
		t.Errorf("sell pressure did not lower the probability: %v vs %v",
			deniedRecord.WhaleProb.FinalProbability, neutral.WhaleProb.FinalProbability)
	}
}

func TestRunDeterministic(t *testing.T) {
	pipe := New(nil, nil, Config{AccountEquity: 10_000, Workers: 1})
	a := pipe.Run(testCard("AMD"))
	b := pipe.Run(testCard("AMD"))
	if a.FinalProbability != b.FinalProbability {
		t.Errorf("same card, different outcomes: %v vs %v", a.FinalProbability, b.FinalProbability)
	}
}

func TestRunBatchPreservesOrder(t *testing.T) {
	pipe := New(nil, nil, Config{AccountEquity: 10_000, Workers: 4})

	cards := make([]*models.Card, 20)
	for i := range cards {
		cards[i] = testCard(fmt.Sprintf("TICK%02d", i))
	}

	results := pipe.RunBatch(cards)
	if len(results) != len(cards) {
		t.Fatalf("got %d results for %d cards", len(results), len(cards))
	}
	for i, r := range results {
		if r.Ticker != cards[i].Ticker {
			t.Errorf("result %d ticker = %q, want %q", i, r.Ticker, cards[i].Ticker)
		}
		if r.RunID != pipe.RunID() {
			t.Errorf("result %d run ID differs", i)
		}
	}
}
