package sessiontransport

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionlab/core/binding"
	"github.com/dmitrymomot/sessionlab/core/cookie"
	"github.com/dmitrymomot/sessionlab/core/logger"
	"github.com/dmitrymomot/sessionlab/core/session"
)

const (
	// DefaultIDCookie carries the plain session identifier.
	DefaultIDCookie = "custom_session_id"
	// DefaultPayloadCookie carries the encrypted client payload.
	DefaultPayloadCookie = "session"
	// DefaultQueryParam is the query parameter a client may use to name a session.
	DefaultQueryParam = "sid"
)

// Cookie moves session state between HTTP requests and binding policies.
// The identifier travels in a plain cookie; the client payload travels as encrypted JSON in a second cookie.
type Cookie struct {
	cookies       *cookie.Manager
	idCookie      string
	payloadCookie string
	queryParam    string
	logger        *slog.Logger
}

// CookieOption configures the transport.
type CookieOption func(*Cookie)

// WithIDCookie sets the identifier cookie name.
func WithIDCookie(name string) CookieOption {
	return func(c *Cookie) {
		if name != "" {
			c.idCookie = name
		}
	}
}

// WithPayloadCookie sets the payload cookie name.
func WithPayloadCookie(name string) CookieOption {
	return func(c *Cookie) {
		if name != "" {
			c.payloadCookie = name
		}
	}
}

// WithQueryParam sets the session query parameter name.
func WithQueryParam(name string) CookieOption {
	return func(c *Cookie) {
		if name != "" {
			c.queryParam = name
		}
	}
}

// WithLogger sets the logger used for unreadable payloads.
func WithLogger(l *slog.Logger) CookieOption {
	return func(c *Cookie) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCookie creates a cookie transport on top of a cookie manager.
func NewCookie(mgr *cookie.Manager, opts ...CookieOption) *Cookie {
	c := &Cookie{
		cookies:       mgr,
		idCookie:      DefaultIDCookie,
		payloadCookie: DefaultPayloadCookie,
		queryParam:    DefaultQueryParam,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read extracts the session view of r.
// A missing or undecryptable payload yields an empty one; the request is never rejected for it.
func (c *Cookie) Read(r *http.Request) binding.Request {
	req := binding.Request{
		Path:   r.URL.Path,
		Header: r.Header,
	}

	if values, ok := r.URL.Query()[c.queryParam]; ok {
		req.HasQuerySID = true
		if len(values) > 0 {
			req.QuerySID = values[0]
		}
	}

	if id, err := c.cookies.Get(r, c.idCookie); err == nil {
		req.CookieID = id
	}

	var payload session.Payload
	if err := c.cookies.GetJSON(r, c.payloadCookie, &payload); err != nil {
		if !errors.Is(err, cookie.ErrCookieNotFound) {
			c.logger.DebugContext(r.Context(), "session payload discarded", logger.Error(err))
		}
		payload = session.Payload{}
	}
	req.Payload = payload

	return req
}

// Write applies the cookie side effects of an outcome.
// idOpts are the identifier cookie attributes, usually Policy.CookieOptions.
func (c *Cookie) Write(w http.ResponseWriter, o binding.Outcome, idOpts ...cookie.Option) error {
	switch {
	case o.ClearCookie:
		c.cookies.Delete(w, c.idCookie, idOpts...)
	case o.IssueCookie && o.Record.ID != "":
		if err := c.cookies.Set(w, c.idCookie, o.Record.ID, idOpts...); err != nil {
			return err
		}
	}

	if o.Payload.IsZero() {
		if o.ClearCookie {
			c.cookies.Delete(w, c.payloadCookie)
		}
		return nil
	}
	return c.cookies.SetJSON(w, c.payloadCookie, o.Payload)
}

// IDCookie returns the identifier cookie name.
func (c *Cookie) IDCookie() string { return c.idCookie }

// PayloadCookie returns the payload cookie name.
func (c *Cookie) PayloadCookie() string { return c.payloadCookie }
