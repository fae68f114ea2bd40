// Package logger provides structured logging utilities built on log/slog.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.WithDevelopment("sessionlab"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("server starting",
//		logger.Component("server"),
//		logger.Event("startup"),
//	)
//
// Production configuration switches to JSON:
//
//	log := logger.New(logger.WithProduction("sessionlab"))
//
// Or from environment (LOG_LEVEL, LOG_FORMAT):
//
//	log := logger.NewFromConfig(cfg, "sessionlab")
//
// # Context Extractors
//
// Extractors add request-scoped attributes to every record logged with a context:
//
//	log := logger.New(
//		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
//			id := middleware.GetRequestID(ctx)
//			return logger.RequestID(id), id != ""
//		}),
//	)
//
// # Attribute Helpers
//
// Helpers return an empty attribute for empty input so they can be passed unconditionally:
//
//	log.Warn("session invalidated",
//		logger.SessionID(rec.ID), // first 8 characters only
//		logger.Reason(err),
//		logger.Variant("strict"),
//	)
package logger
