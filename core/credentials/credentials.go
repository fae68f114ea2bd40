package credentials

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
)

// Verifier checks a username and password pair.
type Verifier interface {
	Verify(ctx context.Context, username, password string) bool
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, username, password string) bool

// Verify implements Verifier.
func (f VerifierFunc) Verify(ctx context.Context, username, password string) bool {
	return f(ctx, username, password)
}

// Static is an in-memory Verifier with plaintext passwords for lab use.
type Static struct {
	users map[string]string
}

var _ Verifier = (*Static)(nil)

// NewStatic creates a verifier for the given username to password map.
func NewStatic(users map[string]string) *Static {
	copied := make(map[string]string, len(users))
	for u, p := range users {
		copied[u] = p
	}
	return &Static{users: copied}
}

// Verify reports whether password exactly matches the stored one for username.
func (s *Static) Verify(_ context.Context, username, password string) bool {
	stored, ok := s.users[username]
	return ok && subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// ParseUsers parses "user:password" pairs separated by commas.
func ParseUsers(s string) (map[string]string, error) {
	users := make(map[string]string)
	for pair := range strings.SplitSeq(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		username, password, ok := strings.Cut(pair, ":")
		if !ok || username == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidUserPair, pair)
		}
		users[username] = password
	}
	if len(users) == 0 {
		return nil, ErrNoUsers
	}
	return users, nil
}
