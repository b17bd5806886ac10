package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"wayfinder/core-go/internal/editsession"
	"wayfinder/core-go/internal/httpapi"
	"wayfinder/core-go/internal/metrics"
	"wayfinder/core-go/internal/sweeper"
)

type serveFlags struct {
	addr string
	seed bool
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve runs the HTTP API. Settings come from the environment (HTTP_ADDR,
DATABASE_URL, REDIS_URL, SESSION_TTL, ...); flags override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().BoolVar(&flags.seed, "seed", false, "store the seed maps before serving (same as SEED_ON_START=true)")
	return cmd
}

func serve(ctx context.Context, flags serveFlags) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if flags.addr != "" {
		cfg.HTTPAddr = flags.addr
	}
	if flags.seed {
		cfg.SeedOnStart = true
	}

	backend, err := openMapStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	readyChecks := map[string]httpapi.ReadyCheck{}
	if backend.pool != nil {
		readyChecks["database"] = backend.pool.Ping
	}

	var sessions editsession.Store
	var cleaner sweeper.Cleaner
	if cfg.RedisURL != "" {
		rs, err := editsession.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rs.Close()
		sessions, cleaner = rs, rs
		readyChecks["redis"] = rs.Ping
	} else {
		ms := editsession.NewMemoryStore()
		sessions, cleaner = ms, ms
	}

	if cfg.SeedOnStart {
		if err := applySeed(ctx, backend.store, cfg.SeedFile, logger); err != nil {
			return err
		}
	}

	m := metrics.New()

	worker := sweeper.New(logger, cleaner, sweeper.Options{Interval: cfg.SessionSweepInterval}, m)
	go worker.Run(ctx)

	h := httpapi.NewHandler(logger, backend.store, sessions, m, httpapi.Options{
		SessionTTL:         cfg.SessionTTL,
		SearchDefaultLimit: cfg.SearchDefaultLimit,
		ReadyChecks:        readyChecks,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("core-go listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server error")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("shutdown complete")
	return nil
}
