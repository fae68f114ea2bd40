package binding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionlab/core/cookie"
	"github.com/dmitrymomot/sessionlab/core/logger"
	"github.com/dmitrymomot/sessionlab/core/session"
)

// PermissiveName is the name reported by the permissive policy.
const PermissiveName = "permissive"

// maxCreateAttempts bounds get-or-create retries in Resolve when a record is deleted concurrently.
const maxCreateAttempts = 3

// Permissive trusts any identifier the client offers and never rotates it.
// It reproduces a session fixation vulnerability on purpose and must not be used outside the lab.
type Permissive struct {
	store  session.Store
	logger *slog.Logger
	now    func() time.Time
}

var _ Policy = (*Permissive)(nil)

// PermissiveOption configures the permissive policy.
type PermissiveOption func(*Permissive)

// WithPermissiveLogger sets the logger.
func WithPermissiveLogger(l *slog.Logger) PermissiveOption {
	return func(p *Permissive) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPermissiveClock overrides the time source.
func WithPermissiveClock(now func() time.Time) PermissiveOption {
	return func(p *Permissive) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPermissive creates the vulnerable policy.
func NewPermissive(store session.Store, opts ...PermissiveOption) (*Permissive, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	p := &Permissive{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements Policy.
func (p *Permissive) Name() string { return PermissiveName }

// GuardsReauthentication implements Policy.
func (p *Permissive) GuardsReauthentication() bool { return false }

// CookieOptions implements Policy. The identifier cookie is readable by scripts and has no SameSite attribute.
func (p *Permissive) CookieOptions() []cookie.Option {
	return []cookie.Option{
		cookie.WithHTTPOnly(false),
		cookie.WithSameSite(0),
	}
}

// Resolve adopts a query identifier verbatim, otherwise the cookie, then the payload, then a fresh one.
func (p *Permissive) Resolve(ctx context.Context, req Request) (Outcome, error) {
	if req.HasQuerySID && req.QuerySID != "" {
		rec, err := p.getOrCreate(ctx, req.QuerySID)
		if err != nil {
			return Outcome{}, err
		}

		payload := req.Payload
		payload.Sync(rec)

		p.logger.DebugContext(ctx, "session adopted from query",
			logger.SessionID(rec.ID),
			logger.Variant(PermissiveName),
		)

		return Outcome{
			Action:      ActionRedirectSelf,
			Record:      rec,
			Payload:     payload,
			IssueCookie: true,
		}, nil
	}

	id := req.CookieID
	if id == "" {
		id = req.Payload.SID
	}
	if id == "" {
		id = session.NewID()
	}

	rec, err := p.getOrCreate(ctx, id)
	if err != nil {
		return Outcome{}, err
	}

	payload := req.Payload
	payload.Sync(rec)

	return Outcome{
		Action:  ActionProceed,
		Record:  rec,
		Payload: payload,
	}, nil
}

// Login authenticates the current record in place. The identifier is kept.
// A record deleted since Resolve, for example by a concurrent logout, stays deleted:
// Login returns session.ErrNotFound instead of recreating it.
func (p *Permissive) Login(ctx context.Context, req Request, username string) (Outcome, error) {
	id := req.Payload.SID
	if id == "" {
		return Outcome{}, fmt.Errorf("permissive login: %w", session.ErrNotFound)
	}

	rec, err := p.store.Update(ctx, id, func(r *session.Record) error {
		return r.Authenticate(username)
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("permissive login: %w", err)
	}

	payload := req.Payload
	payload.Sync(rec)

	return Outcome{
		Action:      ActionProceed,
		Record:      rec,
		Payload:     payload,
		IssueCookie: true,
	}, nil
}

// getOrCreate returns the record for id, inserting an anonymous one if absent.
func (p *Permissive) getOrCreate(ctx context.Context, id string) (session.Record, error) {
	for range maxCreateAttempts {
		rec, err := p.store.Get(ctx, id)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return session.Record{}, err
		}

		rec = session.NewRecord(id, p.now())
		err = p.store.Create(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, session.ErrAlreadyExists) {
			return session.Record{}, err
		}
		// Lost the race to another request; read what it created.
	}
	return session.Record{}, fmt.Errorf("permissive resolve %q: %w", id, session.ErrAlreadyExists)
}
