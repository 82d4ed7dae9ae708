package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/leveledge/internal/application/board"
	"github.com/sawpanic/leveledge/internal/data"
	"github.com/sawpanic/leveledge/internal/models"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Build level-to-level odds boards",
		Long:  "For each card, estimates the probability of touching the next resistance before the next support across day, swing, and long modes.",
		RunE:  runBoard,
	}
	cmd.Flags().String("cards", "cards.json", "Path to enriched cards JSON")
	cmd.Flags().String("out", "", "Write boards JSON to file (default stdout)")
	return cmd
}

func runBoard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cardsPath, _ := cmd.Flags().GetString("cards")
	cards, err := data.LoadCards(cardsPath)
	if err != nil {
		return err
	}

	provider, err := buildHistory(cfg, nil)
	if err != nil {
		return err
	}

	builder := board.NewBuilder()
	boards := make([]board.Board, 0, len(cards))
	for i := range cards {
		card := &cards[i]
		b := builder.Build(card, historyFunc(cmd.Context(), provider, card))
		boards = append(boards, b)
		log.Info().
			Str("ticker", card.Ticker).
			Int("modes", len(b.Modes)).
			Msg("Board built")
	}

	out, _ := cmd.Flags().GetString("out")
	payload, err := json.MarshalIndent(boards, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal boards: %w", err)
	}
	if out == "" {
		fmt.Println(string(payload))
		return nil
	}
	return os.WriteFile(out, payload, 0o644)
}

// historyFunc adapts the provider to the board builder's per-mode bar
// source. Fetch failures log and skip the mode rather than failing the
// whole board.
func historyFunc(ctx context.Context, provider data.HistoryProvider, card *models.Card) func(interval string, maxBars int) []models.Bar {
	return func(interval string, maxBars int) []models.Bar {
		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		bars, err := provider.Bars(fetchCtx, card.Ticker, interval, maxBars)
		if err != nil {
			log.Warn().
				Err(err).
				Str("ticker", card.Ticker).
				Str("interval", interval).
				Msg("History fetch failed, skipping mode")
			return nil
		}
		return bars
	}
}
