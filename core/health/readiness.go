package health

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessionlab/core/handler"
	"github.com/dmitrymomot/sessionlab/core/logger"
	"github.com/dmitrymomot/sessionlab/core/response"
)

// Check is a named dependency probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Readiness returns a handler that answers "ready" when every check passes
// and 503 Service Unavailable otherwise. Failures are logged with the check name.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(ctx C) handler.Response {
		g, gctx := errgroup.WithContext(ctx)
		for _, c := range checks {
			g.Go(func() error {
				if err := c.Fn(gctx); err != nil {
					log.ErrorContext(ctx, "readiness check failed",
						logger.Component(c.Name),
						logger.Error(err),
					)
					return err
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return response.Error(response.ErrServiceUnavailable)
		}
		return response.String("ready")
	}
}
