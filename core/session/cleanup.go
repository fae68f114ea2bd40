package session

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// CleanupConfig configures the background sweeper.
type CleanupConfig struct {
	Store    Store
	Timeout  time.Duration
	Interval time.Duration
	Logger   *slog.Logger
	// Now returns the current time (default: time.Now)
	Now func() time.Time
}

// Cleanup returns an errgroup-compatible function that periodically removes
// records older than Timeout until ctx is canceled.
// Expired records are also rejected lazily at lookup time, so the sweeper only bounds memory growth.
// A non-positive Timeout or Interval yields a function that returns immediately.
func Cleanup(ctx context.Context, cfg CleanupConfig) func() error {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return func() error {
		if cfg.Store == nil || cfg.Timeout <= 0 || cfg.Interval <= 0 {
			return nil
		}

		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				SweepOnce(ctx, cfg)
			}
		}
	}
}

// SweepOnce removes expired records a single time and returns the number removed.
func SweepOnce(ctx context.Context, cfg CleanupConfig) int64 {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	n, err := cfg.Store.DeleteExpired(ctx, cfg.Now().Add(-cfg.Timeout))
	if err != nil {
		cfg.Logger.ErrorContext(ctx, "session cleanup failed", "error", err)
		return 0
	}
	if n > 0 {
		cfg.Logger.DebugContext(ctx, "expired sessions removed", "count", n)
	}
	return n
}
