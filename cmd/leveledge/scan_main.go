package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/leveledge/internal/application/pipeline"
	"github.com/sawpanic/leveledge/internal/data"
	"github.com/sawpanic/leveledge/internal/models"
	"github.com/sawpanic/leveledge/internal/persistence"
	"github.com/sawpanic/leveledge/internal/persistence/postgres"
	"github.com/sawpanic/leveledge/internal/score"
	"github.com/sawpanic/leveledge/internal/tune/weights"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Score enriched cards into trade decisions",
		Long:  "Runs the full decision pipeline over a cards file: factor scoring, stop ladder, whale validation, credibility assessment, and position sizing.",
		RunE:  runScan,
	}
	cmd.Flags().String("cards", "cards.json", "Path to enriched cards JSON")
	cmd.Flags().String("out", "", "Write decisions JSON to file (default stdout)")
	cmd.Flags().Bool("record", false, "Record signals to the outcomes database")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cardsPath, _ := cmd.Flags().GetString("cards")
	cards, err := data.LoadCards(cardsPath)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		return fmt.Errorf("no cards in %s", cardsPath)
	}

	repo, db, err := openOutcomesRepo(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	var lookup score.OutcomeLookup
	if repo != nil {
		lookup = postgres.NewOutcomeLookup(repo)
	}

	w := weights.NewStore(cfg.Scan.WeightsPath).Load()
	pipe := pipeline.New(w, lookup, pipeline.Config{
		AccountEquity: cfg.Scan.AccountEquity,
		Workers:       cfg.Scan.Workers,
	})

	ptrs := make([]*models.Card, len(cards))
	for i := range cards {
		ptrs[i] = &cards[i]
	}
	results := pipe.RunBatch(ptrs)

	if record, _ := cmd.Flags().GetBool("record"); record {
		if repo == nil {
			return fmt.Errorf("--record requires database.dsn in config")
		}
		if err := recordSignals(cmd.Context(), repo, ptrs, results); err != nil {
			return err
		}
	}

	out, _ := cmd.Flags().GetString("out")
	return writeDecisions(out, results)
}

// recordSignals persists each actionable decision for later grading.
func recordSignals(ctx context.Context, repo persistence.OutcomesRepo, cards []*models.Card, results []pipeline.DecisionRecord) error {
	recorded := 0
	for i, r := range results {
		if r.Base.ChosenStop == nil {
			continue
		}
		entry, _ := cards[i].EntryRef()
		target, _ := cards[i].FirstTarget()
		stop := r.Base.ChosenStop.StopPrice

		rr := 0.0
		if risk := entry - stop; risk > 0 {
			rr = (target - entry) / risk
		}

		_, err := repo.InsertSignal(ctx, persistence.Signal{
			RunID:       r.RunID,
			Ticker:      r.Ticker,
			AsOf:        r.AsOf,
			Entry:       entry,
			Stop:        stop,
			Target:      target,
			Probability: r.FinalProbability,
			BucketKey:   score.BucketCard(cards[i]).Key(),
			RRBand:      persistence.RRBandFor(rr),
			Why:         r.Why,
		})
		if err != nil {
			return fmt.Errorf("failed to record signal for %s: %w", r.Ticker, err)
		}
		recorded++
	}
	log.Info().Int("recorded", recorded).Msg("Signals recorded")
	return nil
}

func writeDecisions(path string, results []pipeline.DecisionRecord) error {
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal decisions: %w", err)
	}
	if path == "" {
		fmt.Println(string(payload))
		return nil
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write decisions: %w", err)
	}
	log.Info().Str("path", path).Int("decisions", len(results)).Msg("Decisions written")
	return nil
}
