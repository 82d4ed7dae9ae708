package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/leveledge/internal/config"
	"github.com/sawpanic/leveledge/internal/data"
	"github.com/sawpanic/leveledge/internal/data/cache"
	"github.com/sawpanic/leveledge/internal/persistence"
	"github.com/sawpanic/leveledge/internal/persistence/postgres"
)

// loadConfig resolves the --config flag into a validated configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Info().Str("path", path).Msg("Config loaded")
	}
	return cfg, nil
}

// buildHistory assembles the configured history provider, wrapped in a
// Redis cache when an address is configured. recorder may be nil.
func buildHistory(cfg *config.Config, recorder cache.Recorder) (data.HistoryProvider, error) {
	var provider data.HistoryProvider
	switch cfg.Data.Provider {
	case "file":
		provider = data.NewFileProvider(cfg.Data.FixtureRoot)
	case "http":
		provider = data.NewHTTPProvider(data.HTTPConfig{
			BaseURL: cfg.Data.BaseURL,
			Timeout: cfg.Data.Timeout(),
			RPS:     cfg.Data.RPS,
			Burst:   cfg.Data.Burst,
		})
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.Data.Provider)
	}

	if cfg.Data.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Data.RedisAddr,
			DB:   cfg.Data.RedisDB,
		})
		provider = cache.NewHistory(provider, client, recorder)
		log.Info().Str("addr", cfg.Data.RedisAddr).Msg("History cache enabled")
	}
	return provider, nil
}

// openOutcomesRepo connects to Postgres when a DSN is configured.
// Returns a nil repo when persistence is disabled.
func openOutcomesRepo(cfg *config.Config) (persistence.OutcomesRepo, *sqlx.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, nil, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewOutcomesRepo(db, cfg.Database.Timeout()), db, nil
}
