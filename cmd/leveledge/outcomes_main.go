package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/leveledge/internal/backtest/outcomes"
	"github.com/sawpanic/leveledge/internal/persistence"
)

func newOutcomesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outcomes",
		Short: "Grade recorded signals against realized price history",
		Long:  "Finds signals old enough to grade, fetches their later bars, and records per-horizon returns and stop/target hits.",
		RunE:  runOutcomes,
	}
	cmd.Flags().Int("min-age-days", 20, "Only grade signals at least this old")
	cmd.Flags().Int("limit", 200, "Maximum signals to grade per run")
	return cmd
}

func runOutcomes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, db, err := openOutcomesRepo(cfg)
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("outcomes grading requires database.dsn in config")
	}
	defer db.Close()

	provider, err := buildHistory(cfg, nil)
	if err != nil {
		return err
	}

	minAge, _ := cmd.Flags().GetInt("min-age-days")
	limit, _ := cmd.Flags().GetInt("limit")
	before := time.Now().AddDate(0, 0, -minAge)

	signals, err := repo.ListPendingSignals(cmd.Context(), before, limit)
	if err != nil {
		return err
	}
	if len(signals) == 0 {
		log.Info().Msg("No signals pending grading")
		return nil
	}

	graded := 0
	for _, sig := range signals {
		bars, err := provider.Bars(cmd.Context(), sig.Ticker, "1d", 0)
		if err != nil {
			log.Warn().Err(err).Str("ticker", sig.Ticker).Msg("History fetch failed, skipping signal")
			continue
		}

		var batch []persistence.Outcome
		for _, horizon := range outcomes.Horizons {
			eval, ok := outcomes.Evaluate(bars, sig.AsOf, horizon, sig.Stop, sig.Target)
			if !ok {
				continue
			}
			batch = append(batch, persistence.Outcome{
				SignalID:    sig.ID,
				HorizonDays: eval.HorizonDays,
				ReturnPct:   eval.ReturnPct,
				HitTarget:   eval.HitTarget,
				HitStop:     eval.HitStop,
				MFEPct:      eval.MFEPct,
				MAEPct:      eval.MAEPct,
			})
		}
		if len(batch) == 0 {
			continue
		}

		if err := repo.InsertOutcomes(cmd.Context(), batch); err != nil {
			return fmt.Errorf("failed to record outcomes for signal %d: %w", sig.ID, err)
		}
		graded++
	}

	log.Info().Int("pending", len(signals)).Int("graded", graded).Msg("Outcome grading complete")
	return nil
}
