package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/sessionlab/core/binding"
	"github.com/dmitrymomot/sessionlab/core/credentials"
	"github.com/dmitrymomot/sessionlab/core/logger"
	"github.com/dmitrymomot/sessionlab/core/session"
)

// Status describes a successful Authenticate call.
type Status int

const (
	// StatusAuthenticated means the session was just logged in.
	StatusAuthenticated Status = iota
	// StatusAlreadyAuthenticated means the session was logged in before the attempt and nothing changed.
	StatusAlreadyAuthenticated
)

// Result is returned by Authenticate.
type Result struct {
	Status Status
	// Outcome is the post-login session state. Zero for StatusAlreadyAuthenticated.
	Outcome binding.Outcome
}

// Service implements login and logout on top of a binding policy.
type Service struct {
	policy   binding.Policy
	store    session.Store
	verifier credentials.Verifier
	logger   *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an authentication service.
func New(policy binding.Policy, store session.Store, verifier credentials.Verifier, opts ...Option) (*Service, error) {
	if policy == nil || store == nil || verifier == nil {
		return nil, ErrMissingDependency
	}

	s := &Service{
		policy:   policy,
		store:    store,
		verifier: verifier,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SkipLogin reports whether a login page request should go straight home.
// Only policies that guard re-authentication short-circuit.
func (s *Service) SkipLogin(req binding.Request) bool {
	return s.policy.GuardsReauthentication() && req.Payload.LoggedIn
}

// Authenticate verifies credentials and logs the session of req in.
// req must carry the payload resolved for the current request.
// Bad credentials return ErrInvalidCredentials and leave the session untouched.
func (s *Service) Authenticate(ctx context.Context, req binding.Request, username, password string) (Result, error) {
	if s.SkipLogin(req) {
		return Result{Status: StatusAlreadyAuthenticated}, nil
	}

	if username == "" || !s.verifier.Verify(ctx, username, password) {
		s.logger.InfoContext(ctx, "login failed",
			logger.Username(username),
			logger.Variant(s.policy.Name()),
			logger.Result("failure"),
		)
		return Result{}, ErrInvalidCredentials
	}

	out, err := s.policy.Login(ctx, req, username)
	if err != nil {
		return Result{}, fmt.Errorf("login: %w", err)
	}

	s.logger.InfoContext(ctx, "login succeeded",
		logger.Username(username),
		logger.SessionID(out.Record.ID),
		logger.Variant(s.policy.Name()),
		logger.Result("success"),
	)

	return Result{Status: StatusAuthenticated, Outcome: out}, nil
}

// Logout destroys the current record and returns an outcome that clears the client state.
// It is idempotent: an unknown or missing identifier is not an error.
func (s *Service) Logout(ctx context.Context, req binding.Request) (binding.Outcome, error) {
	if id := req.Payload.SID; id != "" {
		if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, session.ErrNotFound) {
			return binding.Outcome{}, fmt.Errorf("logout: %w", err)
		}
		s.logger.InfoContext(ctx, "logout", logger.SessionID(id))
	}

	return binding.Outcome{
		Action:      binding.ActionRedirectLogin,
		ClearCookie: true,
	}, nil
}
