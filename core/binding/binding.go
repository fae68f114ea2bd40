package binding

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/sessionlab/core/cookie"
	"github.com/dmitrymomot/sessionlab/core/session"
)

// Action tells the request middleware what to do after session resolution.
type Action int

const (
	// ActionProceed continues to the route handler.
	ActionProceed Action = iota
	// ActionRedirectSelf redirects to the request path without its query string.
	ActionRedirectSelf
	// ActionRedirectLogin redirects to the login page.
	ActionRedirectLogin
)

// String returns the action name used in logs.
func (a Action) String() string {
	switch a {
	case ActionProceed:
		return "proceed"
	case ActionRedirectSelf:
		return "redirect_self"
	case ActionRedirectLogin:
		return "redirect_login"
	default:
		return "unknown"
	}
}

// Request is the session-relevant view of an incoming HTTP request.
type Request struct {
	Path string
	// QuerySID is the value of the session query parameter; HasQuerySID reports whether it was present.
	QuerySID    string
	HasQuerySID bool
	// CookieID is the plain identifier cookie value.
	CookieID string
	// Payload is the decrypted client payload carried over from the previous response.
	Payload session.Payload
	Header  http.Header
}

// Outcome is the result of resolving or transitioning a session.
type Outcome struct {
	Action Action
	// Record is the resolved server record. Zero after invalidation.
	Record session.Record
	// Payload is the client payload to send back. Zero means clear it.
	Payload session.Payload
	// IssueCookie sets the identifier cookie to Record.ID.
	IssueCookie bool
	// ClearCookie expires the identifier cookie.
	ClearCookie bool
	// Reason explains a redirect or invalidation. Logged, never shown to clients.
	Reason error
}

// Authenticated returns true if the outcome carries a logged in record.
func (o Outcome) Authenticated() bool {
	return o.Record.ID != "" && o.Record.IsAuthenticated()
}

// Policy decides how a session identifier is obtained, validated and transitioned.
// Implementations must be safe for concurrent use.
type Policy interface {
	// Name identifies the policy in logs and pages.
	Name() string
	// Resolve maps a request to a session record, creating or invalidating it as needed.
	Resolve(ctx context.Context, req Request) (Outcome, error)
	// Login marks the session of req as authenticated by username.
	Login(ctx context.Context, req Request, username string) (Outcome, error)
	// CookieOptions returns the attributes of the identifier cookie.
	CookieOptions() []cookie.Option
	// GuardsReauthentication reports whether login attempts on an authenticated session short-circuit.
	GuardsReauthentication() bool
}

// Apply returns req as the route handler sees it: the payload replaced by the resolved one.
func (o Outcome) Apply(req Request) Request {
	req.Payload = o.Payload
	return req
}
