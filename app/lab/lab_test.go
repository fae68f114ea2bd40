package lab_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionlab/app/lab"
	"github.com/dmitrymomot/sessionlab/core/binding"
	"github.com/dmitrymomot/sessionlab/core/session"
)

const (
	victimUA   = "Mozilla/5.0 (victim)"
	attackerUA = "curl/8.0 (attacker)"
	idCookie   = "custom_session_id"
)

func testConfig(variant string) lab.Config {
	cfg := lab.DefaultConfig()
	cfg.Binding.Variant = variant
	cfg.Cookie.Secrets = "0123456789abcdef0123456789abcdef"
	cfg.Server.Addr = "127.0.0.1:0"
	return cfg
}

func newLab(t *testing.T, cfg lab.Config, opts ...lab.AppOption) *httptest.Server {
	t.Helper()

	opts = append([]lab.AppOption{
		lab.WithConfig(cfg),
		lab.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)

	app, err := lab.NewApp(context.Background(), opts...)
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t      *testing.T
	base   string
	ua     string
	client *http.Client
}

func newBrowser(t *testing.T, srv *httptest.Server, ua string) *browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{
		t:    t,
		base: srv.URL,
		ua:   ua,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(method, path string, form url.Values) (int, string, string) {
	b.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, b.base+path, body)
	require.NoError(b.t, err)
	req.Header.Set("User-Agent", b.ua)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(data)
}

func (b *browser) get(path string) (int, string, string) {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) login(user, pass string) (int, string, string) {
	return b.do(http.MethodPost, "/login", url.Values{"username": {user}, "password": {pass}})
}

func (b *browser) cookie(name string) string {
	u, err := url.Parse(b.base)
	require.NoError(b.t, err)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (b *browser) setCookie(name, value string) {
	u, err := url.Parse(b.base)
	require.NoError(b.t, err)
	b.client.Jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

func TestLab_Permissive(t *testing.T) {
	t.Parallel()

	t.Run("fixation attack succeeds", func(t *testing.T) {
		t.Parallel()

		srv := newLab(t, testConfig(binding.PermissiveName))
		victim := newBrowser(t, srv, victimUA)

		// The victim follows a link crafted by the attacker
		status, loc, _ := victim.get("/login?sid=attacker-chosen")
		require.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/login", loc)
		assert.Equal(t, "attacker-chosen", victim.cookie(idCookie))

		status, _, body := victim.get("/login")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Vulnerable Login")

		status, loc, _ = victim.login("testuser", "password123")
		require.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/", loc)
		assert.Equal(t, "attacker-chosen", victim.cookie(idCookie), "identifier must not rotate")

		status, _, body = victim.get("/")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Welcome, testuser!")
		assert.Contains(t, body, "attacker-chosen")

		// The attacker replays the planted id from another client
		attacker := newBrowser(t, srv, attackerUA)
		status, loc, _ = attacker.get("/?sid=attacker-chosen")
		require.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/", loc)

		status, _, body = attacker.get("/")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Welcome, testuser!")
	})

	t.Run("login page shown to authenticated session", func(t *testing.T) {
		t.Parallel()

		srv := newLab(t, testConfig(binding.PermissiveName))
		b := newBrowser(t, srv, victimUA)

		b.get("/login")
		status, _, _ := b.login("testuser", "password123")
		require.Equal(t, http.StatusFound, status)

		status, _, body := b.get("/login")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "<form")
	})
}

func TestLab_Strict(t *testing.T) {
	t.Parallel()

	t.Run("fixation attack fails", func(t *testing.T) {
		t.Parallel()

		srv := newLab(t, testConfig(binding.StrictName))
		victim := newBrowser(t, srv, victimUA)

		status, loc, _ := victim.get("/login?sid=attacker-chosen")
		require.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/login", loc)
		assert.NotEqual(t, "attacker-chosen", victim.cookie(idCookie))

		status, _, body := victim.get("/login")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Secure Login")
		before := victim.cookie(idCookie)
		require.NotEmpty(t, before)

		status, loc, _ = victim.login("testuser", "password123")
		require.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/", loc)
		after := victim.cookie(idCookie)
		assert.NotEqual(t, before, after, "identifier must rotate on login")

		status, _, body = victim.get("/")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Welcome, testuser!")
		assert.NotContains(t, body, "attacker-chosen")

		// Planting the pre-login id gets the attacker nothing
		attacker := newBrowser(t, srv, victimUA)
		attacker.setCookie(idCookie, before)
		status, loc, _ = attacker.get("/")
		assert.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/login", loc)
	})

	t.Run("stolen cookie from another user agent", func(t *testing.T) {
		t.Parallel()

		srv := newLab(t, testConfig(binding.StrictName))
		victim := newBrowser(t, srv, victimUA)

		victim.get("/login")
		status, _, _ := victim.login("testuser", "password123")
		require.Equal(t, http.StatusFound, status)

		thief := newBrowser(t, srv, attackerUA)
		thief.setCookie(idCookie, victim.cookie(idCookie))
		thief.setCookie("session", victim.cookie("session"))

		status, loc, _ := thief.get("/")
		assert.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/login", loc)
		assert.Empty(t, thief.cookie(idCookie), "identifier cookie must be cleared")
	})

	t.Run("login page redirects authenticated session home", func(t *testing.T) {
		t.Parallel()

		srv := newLab(t, testConfig(binding.StrictName))
		b := newBrowser(t, srv, victimUA)

		b.get("/login")
		b.login("testuser", "password123")

		status, loc, _ := b.get("/login")
		assert.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/", loc)

		status, loc, _ = b.login("testuser", "password123")
		assert.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/", loc)
	})
}

func TestLab_Pages(t *testing.T) {
	t.Parallel()

	for _, variant := range []string{binding.PermissiveName, binding.StrictName} {
		t.Run(variant, func(t *testing.T) {
			t.Parallel()

			srv := newLab(t, testConfig(variant))

			t.Run("home requires login", func(t *testing.T) {
				t.Parallel()

				status, loc, _ := newBrowser(t, srv, victimUA).get("/")
				assert.Equal(t, http.StatusFound, status)
				assert.Equal(t, "/login", loc)
			})

			t.Run("invalid credentials", func(t *testing.T) {
				t.Parallel()

				b := newBrowser(t, srv, victimUA)
				b.get("/login")

				idBefore, payloadBefore := b.cookie(idCookie), b.cookie("session")

				status, _, body := b.login("testuser", "wrong")
				assert.Equal(t, http.StatusOK, status)
				assert.Contains(t, body, "Invalid credentials")
				assert.Equal(t, idBefore, b.cookie(idCookie))
				assert.Equal(t, payloadBefore, b.cookie("session"), "rejected login must not rewrite the payload")

				status, loc, _ := b.get("/")
				assert.Equal(t, http.StatusFound, status)
				assert.Equal(t, "/login", loc)
			})

			t.Run("logout", func(t *testing.T) {
				t.Parallel()

				b := newBrowser(t, srv, victimUA)
				b.get("/login")
				b.login("testuser", "password123")

				status, _, _ := b.get("/")
				require.Equal(t, http.StatusOK, status)

				status, loc, _ := b.get("/logout")
				assert.Equal(t, http.StatusFound, status)
				assert.Equal(t, "/login", loc)

				status, loc, _ = b.get("/")
				assert.Equal(t, http.StatusFound, status)
				assert.Equal(t, "/login", loc)
			})

			t.Run("unknown route", func(t *testing.T) {
				t.Parallel()

				status, _, _ := newBrowser(t, srv, victimUA).get("/admin")
				assert.Equal(t, http.StatusNotFound, status)
			})

			t.Run("probes", func(t *testing.T) {
				t.Parallel()

				b := newBrowser(t, srv, victimUA)
				status, _, body := b.get("/healthz")
				assert.Equal(t, http.StatusOK, status)
				assert.Equal(t, "ok", body)

				status, _, body = b.get("/readyz")
				assert.Equal(t, http.StatusOK, status)
				assert.Equal(t, "ready", body)
				assert.Empty(t, b.cookie(idCookie), "probes carry no session")
			})
		})
	}
}

func TestLab_RedisStore(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	cfg := testConfig(binding.StrictName)
	cfg.Store = lab.StoreRedis
	cfg.Redis.ConnectionURL = "redis://" + mr.Addr()
	cfg.Redis.RetryAttempts = 1

	srv := newLab(t, cfg)
	b := newBrowser(t, srv, victimUA)

	b.get("/login")
	status, _, _ := b.login("testuser", "password123")
	require.Equal(t, http.StatusFound, status)

	status, _, body := b.get("/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Welcome, testuser!")
	assert.NotEmpty(t, mr.Keys())

	status, _, body = b.get("/readyz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body)

	mr.SetError("ERR server unavailable")
	status, _, _ = b.get("/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestNewApp(t *testing.T) {
	t.Parallel()

	t.Run("custom store", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		srv := newLab(t, testConfig(binding.StrictName), lab.WithStore(store))

		newBrowser(t, srv, victimUA).get("/login")
		assert.Equal(t, 1, store.Len())
	})

	t.Run("rejects unknown variant", func(t *testing.T) {
		t.Parallel()

		_, err := lab.NewApp(context.Background(), lab.WithConfig(testConfig("lenient")))
		assert.ErrorIs(t, err, binding.ErrUnknownVariant)
	})

	t.Run("rejects unknown store", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(binding.StrictName)
		cfg.Store = "etcd"
		_, err := lab.NewApp(context.Background(), lab.WithConfig(cfg))
		assert.ErrorIs(t, err, lab.ErrUnknownStore)
	})

	t.Run("rejects nil options", func(t *testing.T) {
		t.Parallel()

		_, err := lab.NewApp(context.Background(), lab.WithConfig(testConfig(binding.StrictName)), lab.WithStore(nil))
		assert.ErrorIs(t, err, lab.ErrNilOption)
	})

	t.Run("ephemeral secret", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(binding.StrictName)
		cfg.Cookie.Secrets = ""
		app, err := lab.NewApp(context.Background(), lab.WithConfig(cfg))
		require.NoError(t, err)
		assert.Equal(t, binding.StrictName, app.Policy().Name())
	})
}

func TestApp_Run(t *testing.T) {
	t.Parallel()

	app, err := lab.NewApp(context.Background(),
		lab.WithConfig(testConfig(binding.StrictName)),
		lab.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return !strings.HasSuffix(app.Addr(), ":0")
	}, time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + app.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
