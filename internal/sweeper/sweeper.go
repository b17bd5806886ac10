// Package sweeper periodically drops expired edit sessions.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wayfinder/core-go/internal/metrics"
)

// Cleaner is the part of a session store the sweeper needs.
// *editsession.MemoryStore and *editsession.RedisStore satisfy it.
type Cleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

type Worker struct {
	log      zerolog.Logger
	store    Cleaner
	interval time.Duration
	timeout  time.Duration
	metrics  *metrics.Metrics
}

type Options struct {
	Interval time.Duration
	// Timeout bounds a single cleanup pass.
	Timeout time.Duration
}

func New(log zerolog.Logger, store Cleaner, opts Options, m *metrics.Metrics) *Worker {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Worker{
		log:      log,
		store:    store,
		interval: interval,
		timeout:  timeout,
		metrics:  m,
	}
}

// Run sweeps every interval until ctx is cancelled. Failing passes back off.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.store == nil {
		return
	}

	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	var consecutiveFailures int
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if _, err := w.runOnce(ctx); err != nil {
			consecutiveFailures++
		} else {
			consecutiveFailures = 0
		}

		timer.Reset(backoffDuration(w.interval, consecutiveFailures))
	}
}

func backoffDuration(base time.Duration, failures int) time.Duration {
	if base <= 0 {
		base = time.Minute
	}
	if failures <= 0 {
		return base
	}

	// base * 2^failures, capped.
	if failures > 4 {
		failures = 4
	}
	d := base * time.Duration(1<<failures)
	if d > 15*time.Minute {
		return 15 * time.Minute
	}
	return d
}

func (w *Worker) runOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	removed, err := w.store.Cleanup(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("session sweep failed")
		return 0, err
	}
	w.metrics.ObserveSessionSweep(removed)
	if removed > 0 {
		w.log.Info().Int("removed", removed).Msg("expired edit sessions removed")
	}
	return removed, nil
}
