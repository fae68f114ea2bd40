package cookie

import (
	"net/http"
	"strings"
)

// Config provides environment-based configuration for cookie manager.
type Config struct {
	// Secrets is a comma separated list, newest first.
	Secrets  string        `env:"COOKIE_SECRETS" envDefault:""`
	Path     string        `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"COOKIE_DOMAIN" envDefault:""`
	MaxAge   int           `env:"COOKIE_MAX_AGE" envDefault:"0"`
	Secure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	HttpOnly bool          `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"2"` // SameSiteLaxMode
	MaxSize  int           `env:"COOKIE_MAX_SIZE" envDefault:"4096"`
}

// DefaultConfig returns a Config with secure defaults.
func DefaultConfig() Config {
	return Config{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxSize:  MaxCookieSize,
	}
}

// SecretList splits comma-separated secrets for key rotation support.
// Empty entries are dropped.
func (c Config) SecretList() []string {
	if c.Secrets == "" {
		return nil
	}

	parts := strings.Split(c.Secrets, ",")
	secrets := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

// NewFromConfig creates a Manager from configuration.
// Only non-zero config values override the secure defaults.
func NewFromConfig(cfg Config, opts ...ManagerOption) (*Manager, error) {
	defaults := []Option{WithHTTPOnly(cfg.HttpOnly)}
	if cfg.Path != "" {
		defaults = append(defaults, WithPath(cfg.Path))
	}
	if cfg.Domain != "" {
		defaults = append(defaults, WithDomain(cfg.Domain))
	}
	if cfg.MaxAge != 0 {
		defaults = append(defaults, WithMaxAge(cfg.MaxAge))
	}
	if cfg.Secure {
		defaults = append(defaults, WithSecure(true))
	}
	if cfg.SameSite != 0 {
		defaults = append(defaults, WithSameSite(cfg.SameSite))
	}

	managerOpts := []ManagerOption{WithDefaults(defaults...), WithMaxSize(cfg.MaxSize)}
	return New(cfg.SecretList(), append(managerOpts, opts...)...)
}
