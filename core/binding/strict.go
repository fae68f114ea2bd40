package binding

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/sessionlab/core/cookie"
	"github.com/dmitrymomot/sessionlab/core/logger"
	"github.com/dmitrymomot/sessionlab/core/session"
	"github.com/dmitrymomot/sessionlab/pkg/fingerprint"
)

// StrictName is the name reported by the strict policy.
const StrictName = "strict"

// Strict only accepts server-issued identifiers bound to the client that received them.
// Identifiers are rotated on login and records expire after a fixed lifetime.
type Strict struct {
	store         session.Store
	logger        *slog.Logger
	now           func() time.Time
	timeout       time.Duration
	secureCookie  bool
	fingerprinter []fingerprint.Option
}

var _ Policy = (*Strict)(nil)

// StrictOption configures the strict policy.
type StrictOption func(*Strict)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) StrictOption {
	return func(s *Strict) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) StrictOption {
	return func(s *Strict) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimeout sets the absolute session lifetime. Non-positive disables expiry.
func WithTimeout(d time.Duration) StrictOption {
	return func(s *Strict) {
		s.timeout = d
	}
}

// WithSecureCookie marks the identifier cookie as HTTPS only.
func WithSecureCookie(secure bool) StrictOption {
	return func(s *Strict) {
		s.secureCookie = secure
	}
}

// WithFingerprintOptions widens the fingerprint input beyond User-Agent.
func WithFingerprintOptions(opts ...fingerprint.Option) StrictOption {
	return func(s *Strict) {
		s.fingerprinter = append(s.fingerprinter, opts...)
	}
}

// NewStrict creates the hardened policy.
func NewStrict(store session.Store, opts ...StrictOption) (*Strict, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	s := &Strict{
		store:   store,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		timeout: session.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name implements Policy.
func (s *Strict) Name() string { return StrictName }

// GuardsReauthentication implements Policy.
func (s *Strict) GuardsReauthentication() bool { return true }

// CookieOptions implements Policy.
func (s *Strict) CookieOptions() []cookie.Option {
	return []cookie.Option{
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithSecure(s.secureCookie),
	}
}

// Resolve validates the presented session or starts a fresh one.
// A query identifier is never adopted.
func (s *Strict) Resolve(ctx context.Context, req Request) (Outcome, error) {
	if req.HasQuerySID {
		s.logger.WarnContext(ctx, "session id in query rejected",
			logger.Path(req.Path),
			logger.Reason(ErrFixationAttempt),
		)
		return Outcome{
			Action:  ActionRedirectSelf,
			Payload: req.Payload,
			Reason:  ErrFixationAttempt,
		}, nil
	}

	fp := s.fingerprint(req.Header)

	id := req.Payload.SID
	if id == "" {
		id = req.CookieID
	}
	if id == "" {
		return s.fresh(ctx, fp)
	}

	rec, err := s.store.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return s.fresh(ctx, fp)
	}
	if err != nil {
		return Outcome{}, err
	}

	if reason := s.check(rec, fp, req.Payload.Token); reason != nil {
		return s.invalidate(ctx, rec.ID, reason)
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

// Login discards the current record and issues a new authenticated one with a new identifier and token.
func (s *Strict) Login(ctx context.Context, req Request, username string) (Outcome, error) {
	if old := req.Payload.SID; old != "" {
		if err := s.store.Delete(ctx, old); err != nil {
			return Outcome{}, fmt.Errorf("strict login: %w", err)
		}
	}

	rec, err := session.NewBoundRecord(s.fingerprint(req.Header), s.now())
	if err != nil {
		return Outcome{}, err
	}
	if err := rec.Authenticate(username); err != nil {
		return Outcome{}, err
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return Outcome{}, fmt.Errorf("strict login: %w", err)
	}

	s.logger.DebugContext(ctx, "session rotated on login",
		logger.SessionID(rec.ID),
		logger.Variant(StrictName),
	)

	return Outcome{
		Action:      ActionProceed,
		Record:      rec,
		Payload:     session.NewPayload(rec),
		IssueCookie: true,
	}, nil
}

// check compares the binding attributes and the record age.
func (s *Strict) check(rec session.Record, fp, token string) error {
	fpOK := subtle.ConstantTimeCompare([]byte(rec.Fingerprint), []byte(fp)) == 1
	tokenOK := subtle.ConstantTimeCompare([]byte(rec.ReplayToken), []byte(token)) == 1
	if !fpOK || !tokenOK || rec.ReplayToken == "" {
		return ErrBindingMismatch
	}
	if rec.IsExpired(s.timeout, s.now()) {
		return session.ErrExpired
	}
	return nil
}

func (s *Strict) fresh(ctx context.Context, fp string) (Outcome, error) {
	rec, err := session.NewBoundRecord(fp, s.now())
	if err != nil {
		return Outcome{}, err
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return Outcome{}, fmt.Errorf("strict resolve: %w", err)
	}

	s.logger.DebugContext(ctx, "session created", logger.SessionID(rec.ID))

	return Outcome{
		Action:      ActionProceed,
		Record:      rec,
		Payload:     session.NewPayload(rec),
		IssueCookie: true,
	}, nil
}

func (s *Strict) invalidate(ctx context.Context, id string, reason error) (Outcome, error) {
	if err := s.store.Delete(ctx, id); err != nil {
		return Outcome{}, fmt.Errorf("strict invalidate: %w", err)
	}

	s.logger.WarnContext(ctx, "session invalidated",
		logger.SessionID(id),
		logger.Reason(reason),
	)

	return Outcome{
		Action:      ActionRedirectLogin,
		ClearCookie: true,
		Reason:      reason,
	}, nil
}

func (s *Strict) fingerprint(h http.Header) string {
	if h == nil {
		h = http.Header{}
	}
	return fingerprint.Generate(h, s.fingerprinter...)
}
