package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionlab/core/binding"
	"github.com/dmitrymomot/sessionlab/core/cookie"
	"github.com/dmitrymomot/sessionlab/core/handler"
	"github.com/dmitrymomot/sessionlab/core/logger"
	"github.com/dmitrymomot/sessionlab/core/response"
)

type sessionKey struct{}

// ErrSessionNotFound reports that the session middleware did not run for the request.
var ErrSessionNotFound = errors.New("session not found in context")

// SessionTransport reads the session view of a request and writes outcome cookies.
type SessionTransport interface {
	Read(r *http.Request) binding.Request
	Write(w http.ResponseWriter, o binding.Outcome, idOpts ...cookie.Option) error
}

// Session is the per-request session state stored in the handler context.
type Session struct {
	// Request is the session view of the incoming request as read from cookies and query.
	Request binding.Request
	// Outcome is the current resolution. Handlers replace it with SetSession after a transition.
	Outcome binding.Outcome

	keep bool
}

// Current returns the request as route handlers see it, carrying the resolved payload.
func (s Session) Current() binding.Request {
	return s.Outcome.Apply(s.Request)
}

// Authenticated reports whether the current session is logged in.
func (s Session) Authenticated() bool {
	return s.Outcome.Authenticated()
}

// Unchanged reports whether writing the current outcome would leave the client cookies as they arrived.
func (s Session) Unchanged() bool {
	o := s.Outcome
	return !o.ClearCookie &&
		o.Record.ID != "" &&
		(!o.IssueCookie || s.Request.CookieID == o.Record.ID) &&
		s.Request.Payload == o.Payload
}

// SessionConfig configures the session middleware.
type SessionConfig[C handler.Context] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Policy resolves every request to a session outcome (required)
	Policy binding.Policy
	// Transport moves the identifier and payload between requests (required)
	Transport SessionTransport
	// Logger for structured logging (default: slog with io.Discard)
	Logger *slog.Logger
	// LoginPath is the redirect target for invalidated sessions (default: "/login")
	LoginPath string
	// ErrorHandler renders failures of the session store.
	// Default: response.Error(response.ErrInternalServerError)
	ErrorHandler func(ctx C, err error) handler.Response
}

// SessionMiddleware resolves the session before any route handler runs.
//
// The middleware:
//   - reads the identifier cookie, the client payload and the session query parameter
//   - asks the policy for an outcome
//   - on a redirect outcome, writes its cookies and redirects without calling the handler
//   - otherwise stores the session in context, calls the handler and writes the
//     cookies of the final outcome before the handler's response is rendered
//
// Usage:
//
//	r.Use(middleware.SessionMiddleware[*router.Context](policy, transport))
//
//	func home(ctx *router.Context) handler.Response {
//		sess, ok := middleware.GetSession(ctx)
//		if !ok || !sess.Authenticated() {
//			return response.Redirect("/login")
//		}
//		...
//	}
func SessionMiddleware[C handler.Context](policy binding.Policy, transport SessionTransport) handler.Middleware[C] {
	return SessionWithConfig[C](SessionConfig[C]{
		Policy:    policy,
		Transport: transport,
	})
}

// SessionWithConfig creates a session middleware with custom configuration.
func SessionWithConfig[C handler.Context](cfg SessionConfig[C]) handler.Middleware[C] {
	if cfg.Policy == nil {
		panic("session middleware: policy is required")
	}
	if cfg.Transport == nil {
		panic("session middleware: transport is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx C, err error) handler.Response {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}
	}

	idOpts := cfg.Policy.CookieOptions()

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			r := ctx.Request()
			req := cfg.Transport.Read(r)

			out, err := cfg.Policy.Resolve(ctx, req)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return response.Error(ctxErr)
				}
				cfg.Logger.ErrorContext(ctx, "session resolution failed",
					logger.Variant(cfg.Policy.Name()),
					logger.Path(r.URL.Path),
					logger.Error(err),
				)
				return cfg.ErrorHandler(ctx, err)
			}

			cfg.Logger.DebugContext(ctx, "session resolved",
				logger.Variant(cfg.Policy.Name()),
				logger.Path(r.URL.Path),
				logger.Action(out.Action.String()),
				logger.SessionID(out.Record.ID),
				logger.Reason(out.Reason),
			)

			switch out.Action {
			case binding.ActionRedirectSelf:
				return withCookies(cfg.Transport, out, idOpts, response.Redirect(r.URL.Path))
			case binding.ActionRedirectLogin:
				return withCookies(cfg.Transport, out, idOpts, response.Redirect(cfg.LoginPath))
			}

			ctx.SetValue(sessionKey{}, Session{Request: req, Outcome: out})

			resp := next(ctx)
			if resp == nil {
				return nil
			}

			// The handler may have replaced the outcome
			current, ok := GetSession(ctx)
			if !ok || (current.keep && current.Unchanged()) {
				return resp
			}
			return withCookies(cfg.Transport, current.Outcome, idOpts, resp)
		}
	}
}

// withCookies writes the cookies of o before rendering next.
func withCookies(t SessionTransport, o binding.Outcome, idOpts []cookie.Option, next handler.Response) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if err := t.Write(w, o, idOpts...); err != nil {
			return err
		}
		return next(w, r)
	}
}

// GetSession retrieves the session from context.
// Returns the session and true if found, zero session and false otherwise.
func GetSession(ctx handler.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	sess, ok := ctx.Value(sessionKey{}).(Session)
	return sess, ok
}

// MustGetSession retrieves the session from context or panics if not found.
// Use this when session existence is guaranteed by middleware.
func MustGetSession(ctx handler.Context) Session {
	sess, ok := GetSession(ctx)
	if !ok {
		panic(ErrSessionNotFound)
	}
	return sess
}

// SetSession replaces the current outcome, for example after login or logout.
// The middleware writes the cookies of the last outcome set.
func SetSession(ctx handler.Context, out binding.Outcome) {
	sess, _ := GetSession(ctx)
	sess.Outcome = out
	ctx.SetValue(sessionKey{}, sess)
}

// KeepClientState asks the middleware not to rewrite the session cookies when
// the outcome leaves them unchanged, for example after a rejected login.
// Outcomes that create, rotate or clear the session are still written.
func KeepClientState(ctx handler.Context) {
	sess, ok := GetSession(ctx)
	if !ok {
		return
	}
	sess.keep = true
	ctx.SetValue(sessionKey{}, sess)
}
