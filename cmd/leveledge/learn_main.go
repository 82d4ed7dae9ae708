package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/leveledge/internal/tune/weights"
)

func newLearnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Update factor weights from graded outcomes",
		Long:  "Reads recent graded outcomes, nudges factor weights toward factors that fire in winners, and saves the weights file atomically.",
		RunE:  runLearn,
	}
	cmd.Flags().Int("limit", 1000, "Maximum recent outcomes to learn from")
	cmd.Flags().Int("horizon", 60, "Grading horizon in bars to learn from")
	return cmd
}

func runLearn(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, db, err := openOutcomesRepo(cfg)
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("learning requires database.dsn in config")
	}
	defer db.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	horizon, _ := cmd.Flags().GetInt("horizon")

	recorded, signals, err := repo.ListRecentOutcomes(cmd.Context(), limit)
	if err != nil {
		return err
	}

	var batch []weights.Outcome
	for i, o := range recorded {
		if o.HorizonDays != horizon {
			continue
		}
		batch = append(batch, weights.Outcome{
			IsWin: o.HitTarget && !o.HitStop,
			Why:   signals[i].Why,
		})
	}
	if len(batch) == 0 {
		log.Info().Int("horizon", horizon).Msg("No outcomes at horizon, weights unchanged")
		return nil
	}

	store := weights.NewStore(cfg.Scan.WeightsPath)
	current := store.Load()
	updated := weights.Update(current, batch)

	if err := store.Save(updated); err != nil {
		return err
	}
	log.Info().
		Int("outcomes", len(batch)).
		Int("horizon", horizon).
		Msg("Weights updated")
	return nil
}
