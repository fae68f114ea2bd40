package logger

import "log/slog"

// Config provides environment-based logger configuration.
type Config struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Format is "text" or "json".
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// NewFromConfig creates a logger from configuration, tagged with the service name.
func NewFromConfig(cfg Config, service string, opts ...Option) *slog.Logger {
	base := []Option{
		WithLevel(ParseLevel(cfg.Level)),
		WithAttr(slog.String("service", service)),
	}
	if cfg.Format == "json" {
		base = append(base, WithJSONFormatter())
	}
	return New(append(base, opts...)...)
}
