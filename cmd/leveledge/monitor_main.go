package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/leveledge/internal/application/board"
	"github.com/sawpanic/leveledge/internal/application/pipeline"
	"github.com/sawpanic/leveledge/internal/config"
	"github.com/sawpanic/leveledge/internal/data"
	httpiface "github.com/sawpanic/leveledge/internal/interfaces/http"
	"github.com/sawpanic/leveledge/internal/models"
	"github.com/sawpanic/leveledge/internal/persistence/postgres"
	"github.com/sawpanic/leveledge/internal/score"
	"github.com/sawpanic/leveledge/internal/tune/weights"
)

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start the read-only monitoring HTTP server",
		Long:  "Serves /health, /metrics, /decisions, and /boards endpoints. Decisions come from a scan output file loaded at startup, or from periodic rescans of a cards file.",
		RunE:  runMonitor,
	}
	cmd.Flags().String("decisions", "", "Path to a scan decisions JSON file to serve")
	cmd.Flags().String("cards", "", "Path to a cards JSON file to rescan periodically")
	cmd.Flags().Duration("interval", 15*time.Minute, "Rescan interval when --cards is set")
	return cmd
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store := httpiface.NewResultStore()
	metrics := httpiface.NewMetricsRegistry()

	if path, _ := cmd.Flags().GetString("decisions"); path != "" {
		results, err := loadDecisions(path)
		if err != nil {
			return err
		}
		store.Replace(results)
		metrics.ObserveDecisions(results)
		log.Info().Str("path", path).Int("decisions", len(results)).Msg("Decisions loaded")
	}

	server, err := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Monitor.Host,
		Port:         cfg.Monitor.Port,
		ReadTimeout:  httpiface.DefaultServerConfig().ReadTimeout,
		WriteTimeout: httpiface.DefaultServerConfig().WriteTimeout,
		IdleTimeout:  httpiface.DefaultServerConfig().IdleTimeout,
	}, store, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cardsPath, _ := cmd.Flags().GetString("cards"); cardsPath != "" {
		interval, _ := cmd.Flags().GetDuration("interval")
		ref, err := newRefresher(cfg, cardsPath, store, metrics)
		if err != nil {
			return err
		}
		defer ref.close()
		go ref.loop(ctx, interval)
	}

	return server.Start(ctx)
}

// refresher periodically rescans the cards file and rebuilds the odds
// boards, replacing the store snapshots the HTTP surface serves.
type refresher struct {
	cfg      *config.Config
	cards    string
	store    *httpiface.ResultStore
	metrics  *httpiface.MetricsRegistry
	provider data.HistoryProvider
	lookup   score.OutcomeLookup
	closeDB  func()
}

func newRefresher(cfg *config.Config, cardsPath string, store *httpiface.ResultStore, metrics *httpiface.MetricsRegistry) (*refresher, error) {
	provider, err := buildHistory(cfg, metrics)
	if err != nil {
		return nil, err
	}

	repo, db, err := openOutcomesRepo(cfg)
	if err != nil {
		return nil, err
	}

	r := &refresher{
		cfg:      cfg,
		cards:    cardsPath,
		store:    store,
		metrics:  metrics,
		provider: provider,
		closeDB:  func() {},
	}
	if repo != nil {
		r.lookup = postgres.NewOutcomeLookup(repo)
		r.closeDB = func() { db.Close() }
	}
	return r, nil
}

func (r *refresher) close() {
	r.closeDB()
}

func (r *refresher) loop(ctx context.Context, interval time.Duration) {
	r.refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *refresher) refresh(ctx context.Context) {
	r.metrics.ActiveScans.Inc()
	defer r.metrics.ActiveScans.Dec()

	cards, err := data.LoadCards(r.cards)
	if err != nil {
		r.metrics.RecordPipelineError("scan", "cards_load")
		log.Warn().Err(err).Str("path", r.cards).Msg("Cards reload failed, keeping last snapshot")
		return
	}
	ptrs := make([]*models.Card, len(cards))
	for i := range cards {
		ptrs[i] = &cards[i]
	}

	// Weights reload each cycle so a learn pass takes effect without a
	// restart.
	w := weights.NewStore(r.cfg.Scan.WeightsPath).Load()
	pipe := pipeline.New(w, r.lookup, pipeline.Config{
		AccountEquity: r.cfg.Scan.AccountEquity,
		Workers:       r.cfg.Scan.Workers,
	})

	scanTimer := r.metrics.StartStepTimer("scan")
	results := pipe.RunBatch(ptrs)
	scanTimer.Stop("ok")
	r.store.Replace(results)
	r.metrics.ObserveDecisions(results)

	boardTimer := r.metrics.StartStepTimer("board")
	builder := board.NewBuilder()
	boards := make([]board.Board, 0, len(ptrs))
	for _, card := range ptrs {
		boards = append(boards, builder.Build(card, r.history(ctx, card)))
	}
	boardTimer.Stop("ok")
	r.store.ReplaceBoards(boards)

	log.Info().Int("decisions", len(results)).Int("boards", len(boards)).Msg("Monitor snapshot refreshed")
}

func (r *refresher) history(ctx context.Context, card *models.Card) func(interval string, maxBars int) []models.Bar {
	return func(interval string, maxBars int) []models.Bar {
		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		bars, err := r.provider.Bars(fetchCtx, card.Ticker, interval, maxBars)
		if err != nil {
			r.metrics.RecordPipelineError("board", "history_fetch")
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

func loadDecisions(path string) ([]pipeline.DecisionRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read decisions file: %w", err)
	}
	var results []pipeline.DecisionRecord
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("failed to parse decisions file %s: %w", path, err)
	}
	return results, nil
}
