package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wayfinder/core-go/internal/config"
	"wayfinder/core-go/internal/db"
	"wayfinder/core-go/internal/httpapi"
	"wayfinder/core-go/internal/mapstore"
	"wayfinder/core-go/internal/seed"
	"wayfinder/core-go/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "core-go",
		Short:        "Indoor map service: floor grids, points of interest and routing graphs",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newRenderCmd())

	return root
}

// mapBackend is the configured map store plus what it needs at shutdown.
type mapBackend struct {
	store mapstore.Store
	pool  *db.Pool
}

func (b *mapBackend) Close() {
	b.pool.Close()
}

// openMapStore connects to Postgres when DATABASE_URL is set and falls back to
// an in-process store otherwise.
func openMapStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*mapBackend, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set; maps are kept in memory")
		return &mapBackend{store: mapstore.NewMemory()}, nil
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if cfg.Migrate {
		script, err := migrations.Script()
		if err != nil {
			pool.Close()
			return nil, err
		}
		if err := pool.Migrate(ctx, script); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info().Msg("database schema applied")
	}
	return &mapBackend{store: mapstore.NewPostgres(pool), pool: pool}, nil
}

// loadSeed reads path, or the built-in campus when path is empty.
func loadSeed(path string) (*seed.Document, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.ReadFile(path)
}

// applySeed loads and stores the seed document, skipping maps that already exist.
func applySeed(ctx context.Context, store seed.Store, path string, logger zerolog.Logger) error {
	doc, err := loadSeed(path)
	if err != nil {
		return err
	}
	maps, err := seed.Build(doc)
	if err != nil {
		return err
	}
	saved, err := seed.Apply(ctx, store, maps)
	if err != nil {
		return err
	}
	for _, m := range saved {
		logger.Info().Str("map", m.Name).Str("id", m.Ref.String()).Int("nodes", len(m.Nodes)).Msg("seeded map")
	}
	logger.Info().Int("seeded", len(saved)).Int("skipped", len(maps)-len(saved)).Msg("seed complete")
	return nil
}

func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, httpapi.NewLoggerWithFormat(cfg.LogLevel, cfg.LogFormat), nil
}
