package binding_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionlab/core/binding"
	"github.com/dmitrymomot/sessionlab/core/cookie"
	"github.com/dmitrymomot/sessionlab/core/session"
	"github.com/dmitrymomot/sessionlab/pkg/fingerprint"
)

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newStrict(t *testing.T, opts ...binding.StrictOption) (*binding.Strict, *session.MemoryStore, *clock) {
	t.Helper()
	store := session.NewMemoryStore()
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s, err := binding.NewStrict(store, append([]binding.StrictOption{binding.WithClock(clk.Now)}, opts...)...)
	require.NoError(t, err)
	return s, store, clk
}

// follow builds the next request a browser would send after receiving out.
func follow(out binding.Outcome, path, ua string) binding.Request {
	req := binding.Request{Path: path, Payload: out.Payload, Header: uaHeader(ua)}
	if out.IssueCookie {
		req.CookieID = out.Record.ID
	}
	return req
}

func TestStrict_Resolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("first contact creates bound record", func(t *testing.T) {
		t.Parallel()
		s, store, clk := newStrict(t)

		out, err := s.Resolve(ctx, binding.Request{Path: "/", Header: uaHeader("browser")})
		require.NoError(t, err)

		assert.Equal(t, binding.ActionProceed, out.Action)
		assert.True(t, out.IssueCookie)
		assert.Equal(t, fingerprint.UserAgent("browser"), out.Record.Fingerprint)
		assert.NotEmpty(t, out.Record.ReplayToken)
		assert.Equal(t, clk.Now(), out.Record.CreatedAt)
		assert.Equal(t, out.Record.ReplayToken, out.Payload.Token)
		assert.Equal(t, out.Record.ID, out.Payload.SID)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("query sid is rejected without state change", func(t *testing.T) {
		t.Parallel()
		s, store, _ := newStrict(t)

		out, err := s.Resolve(ctx, binding.Request{Path: "/", QuerySID: "attacker123", HasQuerySID: true})
		require.NoError(t, err)

		assert.Equal(t, binding.ActionRedirectSelf, out.Action)
		assert.ErrorIs(t, out.Reason, binding.ErrFixationAttempt)
		assert.False(t, out.IssueCookie)
		assert.Equal(t, 0, store.Len())
		_, err = store.Get(ctx, "attacker123")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("same client proceeds and cookie is reissued", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStrict(t)

		first, err := s.Resolve(ctx, binding.Request{Path: "/", Header: uaHeader("browser")})
		require.NoError(t, err)

		second, err := s.Resolve(ctx, follow(first, "/", "browser"))
		require.NoError(t, err)

		assert.Equal(t, binding.ActionProceed, second.Action)
		assert.Equal(t, first.Record.ID, second.Record.ID)
		assert.True(t, second.IssueCookie)
		assert.Equal(t, first.Payload.Token, second.Payload.Token)
	})

	t.Run("unknown id starts fresh", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStrict(t)

		out, err := s.Resolve(ctx, binding.Request{CookieID: "forged", Header: uaHeader("browser")})
		require.NoError(t, err)

		assert.Equal(t, binding.ActionProceed, out.Action)
		assert.NotEqual(t, "forged", out.Record.ID)
	})

	t.Run("user agent mismatch invalidates", func(t *testing.T) {
		t.Parallel()
		s, store, _ := newStrict(t)

		first, err := s.Resolve(ctx, binding.Request{Header: uaHeader("victim-browser")})
		require.NoError(t, err)

		out, err := s.Resolve(ctx, follow(first, "/", "attacker-browser"))
		require.NoError(t, err)

		assert.Equal(t, binding.ActionRedirectLogin, out.Action)
		assert.ErrorIs(t, out.Reason, binding.ErrBindingMismatch)
		assert.True(t, out.ClearCookie)
		assert.True(t, out.Payload.IsZero())
		_, err = store.Get(ctx, first.Record.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("stolen cookie without token invalidates", func(t *testing.T) {
		t.Parallel()
		s, store, _ := newStrict(t)

		first, err := s.Resolve(ctx, binding.Request{Header: uaHeader("browser")})
		require.NoError(t, err)

		out, err := s.Resolve(ctx, binding.Request{CookieID: first.Record.ID, Header: uaHeader("browser")})
		require.NoError(t, err)

		assert.Equal(t, binding.ActionRedirectLogin, out.Action)
		assert.ErrorIs(t, out.Reason, binding.ErrBindingMismatch)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("wrong token invalidates", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStrict(t)

		first, err := s.Resolve(ctx, binding.Request{Header: uaHeader("browser")})
		require.NoError(t, err)

		req := follow(first, "/", "browser")
		req.Payload.Token = "guessed"
		out, err := s.Resolve(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, binding.ActionRedirectLogin, out.Action)
	})

	t.Run("missing user agent is still bound", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStrict(t)

		first, err := s.Resolve(ctx, binding.Request{})
		require.NoError(t, err)
		assert.Equal(t, fingerprint.UserAgent(""), first.Record.Fingerprint)

		same, err := s.Resolve(ctx, follow(first, "/", ""))
		require.NoError(t, err)
		assert.Equal(t, binding.ActionProceed, same.Action)

		other, err := s.Resolve(ctx, follow(same, "/", "now-with-ua"))
		require.NoError(t, err)
		assert.Equal(t, binding.ActionRedirectLogin, other.Action)
	})

	t.Run("expires after timeout", func(t *testing.T) {
		t.Parallel()
		s, store, clk := newStrict(t)

		first, err := s.Resolve(ctx, binding.Request{Header: uaHeader("browser")})
		require.NoError(t, err)

		clk.Advance(900 * time.Second)
		edge, err := s.Resolve(ctx, follow(first, "/", "browser"))
		require.NoError(t, err)
		assert.Equal(t, binding.ActionProceed, edge.Action, "exactly at the timeout the session is still valid")

		clk.Advance(time.Second)
		out, err := s.Resolve(ctx, follow(edge, "/", "browser"))
		require.NoError(t, err)

		assert.Equal(t, binding.ActionRedirectLogin, out.Action)
		assert.ErrorIs(t, out.Reason, session.ErrExpired)
		assert.ErrorIs(t, out.Reason, binding.ErrExpired)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("binding mismatch reported before expiry", func(t *testing.T) {
		t.Parallel()
		s, _, clk := newStrict(t)

		first, err := s.Resolve(ctx, binding.Request{Header: uaHeader("browser")})
		require.NoError(t, err)

		clk.Advance(time.Hour)
		out, err := s.Resolve(ctx, follow(first, "/", "other"))
		require.NoError(t, err)
		assert.ErrorIs(t, out.Reason, binding.ErrBindingMismatch)
	})

	t.Run("zero timeout disables expiry", func(t *testing.T) {
		t.Parallel()
		s, _, clk := newStrict(t, binding.WithTimeout(0))

		first, err := s.Resolve(ctx, binding.Request{Header: uaHeader("browser")})
		require.NoError(t, err)

		clk.Advance(24 * time.Hour)
		out, err := s.Resolve(ctx, follow(first, "/", "browser"))
		require.NoError(t, err)
		assert.Equal(t, binding.ActionProceed, out.Action)
	})

	t.Run("accept headers widen fingerprint", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStrict(t, binding.WithFingerprintOptions(fingerprint.WithAcceptHeaders()))

		h := uaHeader("browser")
		h.Set("Accept-Language", "en")
		first, err := s.Resolve(ctx, binding.Request{Header: h})
		require.NoError(t, err)

		next := follow(first, "/", "browser")
		next.Header.Set("Accept-Language", "fr")
		out, err := s.Resolve(ctx, next)
		require.NoError(t, err)
		assert.Equal(t, binding.ActionRedirectLogin, out.Action)
	})
}

func TestStrict_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rotates id and token", func(t *testing.T) {
		t.Parallel()
		s, store, _ := newStrict(t)

		anon, err := s.Resolve(ctx, binding.Request{Header: uaHeader("browser")})
		require.NoError(t, err)

		out, err := s.Login(ctx, anon.Apply(binding.Request{Path: "/login", Header: uaHeader("browser")}), "testuser")
		require.NoError(t, err)

		assert.NotEqual(t, anon.Record.ID, out.Record.ID)
		assert.NotEqual(t, anon.Record.ReplayToken, out.Record.ReplayToken)
		assert.True(t, out.Authenticated())
		assert.True(t, out.IssueCookie)
		assert.Equal(t, session.NewPayload(out.Record), out.Payload)

		_, err = store.Get(ctx, anon.Record.ID)
		assert.ErrorIs(t, err, session.ErrNotFound, "old record is destroyed")
		assert.Equal(t, 1, store.Len())

		home, err := s.Resolve(ctx, follow(out, "/", "browser"))
		require.NoError(t, err)
		assert.Equal(t, binding.ActionProceed, home.Action)
		assert.True(t, home.Authenticated())
		assert.Equal(t, "testuser", home.Payload.Username)
	})

	t.Run("login resets creation time", func(t *testing.T) {
		t.Parallel()
		s, _, clk := newStrict(t)

		anon, err := s.Resolve(ctx, binding.Request{Header: uaHeader("browser")})
		require.NoError(t, err)
		clk.Advance(10 * time.Minute)

		out, err := s.Login(ctx, anon.Apply(binding.Request{Header: uaHeader("browser")}), "testuser")
		require.NoError(t, err)
		assert.Equal(t, clk.Now(), out.Record.CreatedAt)
	})

	t.Run("cookie options", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStrict(t, binding.WithSecureCookie(true))

		opts := cookie.Options{}
		for _, opt := range s.CookieOptions() {
			opt(&opts)
		}
		assert.True(t, opts.HttpOnly)
		assert.True(t, opts.Secure)
		assert.Equal(t, http.SameSiteLaxMode, opts.SameSite)
		assert.True(t, s.GuardsReauthentication())
	})
}

// TestStrict_FixationDefense replays the permissive attack against the strict policy.
func TestStrict_FixationDefense(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, store, _ := newStrict(t)

	planted, err := s.Resolve(ctx, binding.Request{Path: "/", QuerySID: "attacker123", HasQuerySID: true})
	require.NoError(t, err)
	require.Equal(t, binding.ActionRedirectSelf, planted.Action)

	// Even a planted cookie does not name a server record.
	victim, err := s.Resolve(ctx, binding.Request{Path: "/", CookieID: "attacker123", Header: uaHeader("victim")})
	require.NoError(t, err)
	require.NotEqual(t, "attacker123", victim.Record.ID)

	login, err := s.Login(ctx, victim.Apply(binding.Request{Header: uaHeader("victim")}), "testuser")
	require.NoError(t, err)

	_, err = store.Get(ctx, "attacker123")
	assert.ErrorIs(t, err, session.ErrNotFound)

	// The attacker only knows the pre-login id.
	attacker, err := s.Resolve(ctx, binding.Request{CookieID: victim.Record.ID, Header: uaHeader("attacker")})
	require.NoError(t, err)
	assert.False(t, attacker.Authenticated())

	// Even with the post-login id the attacker lacks the token and the fingerprint.
	stolen, err := s.Resolve(ctx, binding.Request{CookieID: login.Record.ID, Header: uaHeader("attacker")})
	require.NoError(t, err)
	assert.Equal(t, binding.ActionRedirectLogin, stolen.Action)
}

func TestStrict_ConcurrentResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, store, _ := newStrict(t)

	first, err := s.Resolve(ctx, binding.Request{Header: uaHeader("browser")})
	require.NoError(t, err)

	const numGoroutines = 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for range numGoroutines {
		go func() {
			defer wg.Done()
			out, err := s.Resolve(ctx, follow(first, "/", "browser"))
			assert.NoError(t, err)
			assert.Equal(t, binding.ActionProceed, out.Action)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
}
