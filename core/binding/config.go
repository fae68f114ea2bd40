package binding

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionlab/core/session"
	"github.com/dmitrymomot/sessionlab/pkg/fingerprint"
)

// Config selects and tunes the binding policy.
type Config struct {
	// Variant is "strict" or "permissive".
	Variant string `env:"SESSION_VARIANT" envDefault:"strict"`
	// CookieSecure sets the Secure attribute on the strict identifier cookie.
	CookieSecure bool `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	// FingerprintAcceptHeaders adds Accept headers to the strict fingerprint.
	FingerprintAcceptHeaders bool `env:"SESSION_FINGERPRINT_ACCEPT_HEADERS" envDefault:"false"`
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{Variant: StrictName}
}

// New builds the policy named by cfg.Variant.
// Timeout only applies to the strict policy.
func New(cfg Config, store session.Store, timeout time.Duration, log *slog.Logger) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Variant)) {
	case StrictName, "":
		opts := []StrictOption{
			WithLogger(log),
			WithTimeout(timeout),
			WithSecureCookie(cfg.CookieSecure),
		}
		if cfg.FingerprintAcceptHeaders {
			opts = append(opts, WithFingerprintOptions(fingerprint.WithAcceptHeaders()))
		}
		return NewStrict(store, opts...)
	case PermissiveName:
		return NewPermissive(store, WithPermissiveLogger(log))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, cfg.Variant)
	}
}
