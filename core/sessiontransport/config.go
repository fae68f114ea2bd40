package sessiontransport

import (
	"github.com/dmitrymomot/sessionlab/core/cookie"
)

// CookieConfig provides environment-based configuration for the cookie transport.
type CookieConfig struct {
	IDCookie      string `env:"SESSION_COOKIE_NAME" envDefault:"custom_session_id"`
	PayloadCookie string `env:"SESSION_PAYLOAD_COOKIE_NAME" envDefault:"session"`
	QueryParam    string `env:"SESSION_QUERY_PARAM" envDefault:"sid"`
}

// DefaultCookieConfig returns a CookieConfig with the default names.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		IDCookie:      DefaultIDCookie,
		PayloadCookie: DefaultPayloadCookie,
		QueryParam:    DefaultQueryParam,
	}
}

// NewCookieFromConfig creates a cookie transport from configuration.
func NewCookieFromConfig(cfg CookieConfig, mgr *cookie.Manager, opts ...CookieOption) *Cookie {
	base := []CookieOption{
		WithIDCookie(cfg.IDCookie),
		WithPayloadCookie(cfg.PayloadCookie),
		WithQueryParam(cfg.QueryParam),
	}
	return NewCookie(mgr, append(base, opts...)...)
}
