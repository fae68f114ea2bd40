package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionlab/core/cookie"
)

const testSecret = "test-secret-key-32-characters!!!"
const testSecret2 = "another-secret-key-32-chars!!!!!"

// replay copies Set-Cookie headers from a recorder into a new request.
func replay(t *testing.T, w *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestManager_BasicOperations(t *testing.T) {
	t.Parallel()

	t.Run("set and get cookie", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, m.Set(w, "test", "value123"))

		value, err := m.Get(replay(t, w), "test")
		require.NoError(t, err)
		assert.Equal(t, "value123", value)
	})

	t.Run("secure defaults", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, m.Set(w, "test", "v"))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "/", cookies[0].Path)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		assert.False(t, cookies[0].Secure)
	})

	t.Run("per-call options override defaults", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, m.Set(w, "test", "v",
			cookie.WithHTTPOnly(false),
			cookie.WithSameSite(http.SameSiteDefaultMode),
			cookie.WithSecure(true),
		))

		header := w.Header().Get("Set-Cookie")
		assert.NotContains(t, header, "HttpOnly")
		assert.NotContains(t, header, "SameSite")
		assert.Contains(t, header, "Secure")
	})

	t.Run("cookie not found", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "missing")
		assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})

	t.Run("delete expires immediately", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		m.Delete(w, "test")

		header := w.Header().Get("Set-Cookie")
		assert.Contains(t, header, "test=;")
		assert.Contains(t, header, "Max-Age=0")
		assert.Contains(t, header, "Expires=Thu, 01 Jan 1970 00:00:00 GMT")
	})
}

func TestManager_EncryptedCookies(t *testing.T) {
	t.Parallel()

	t.Run("set and get encrypted cookie", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, m.SetEncrypted(w, "secret", "sensitive"))
		assert.NotContains(t, w.Header().Get("Set-Cookie"), "sensitive")

		value, err := m.GetEncrypted(replay(t, w), "secret")
		require.NoError(t, err)
		assert.Equal(t, "sensitive", value)
	})

	t.Run("cannot decrypt with wrong key", func(t *testing.T) {
		t.Parallel()
		m1, err := cookie.New([]string{testSecret})
		require.NoError(t, err)
		m2, err := cookie.New([]string{testSecret2})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, m1.SetEncrypted(w, "secret", "data"))

		_, err = m2.GetEncrypted(replay(t, w), "secret")
		assert.ErrorIs(t, err, cookie.ErrDecryptionFailed)
	})

	t.Run("rejects forged value", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "secret", Value: "not-base64!!"})

		_, err = m.GetEncrypted(r, "secret")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})

	t.Run("json round trip", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		type data struct {
			SID      string `json:"sid"`
			LoggedIn bool   `json:"logged_in"`
		}

		w := httptest.NewRecorder()
		require.NoError(t, m.SetJSON(w, "session", data{SID: "abc", LoggedIn: true}))

		var got data
		require.NoError(t, m.GetJSON(replay(t, w), "session", &got))
		assert.Equal(t, data{SID: "abc", LoggedIn: true}, got)
	})
}

func TestManager_KeyRotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	rotated, err := cookie.New([]string{testSecret2, testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, old.SetEncrypted(w, "secret", "data"))

	value, err := rotated.GetEncrypted(replay(t, w), "secret")
	require.NoError(t, err)
	assert.Equal(t, "data", value)
}

func TestManager_SizeLimit(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{testSecret}, cookie.WithMaxSize(100))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = m.Set(w, "big", strings.Repeat("x", 200))

	var tooLarge cookie.ErrCookieTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, "big", tooLarge.Name)
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	require.NoError(t, m.Set(w, "small", "x"))
}

func TestManager_Validation(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"", ""})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
}

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	s1, err := cookie.GenerateSecret()
	require.NoError(t, err)
	s2, err := cookie.GenerateSecret()
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	_, err = cookie.New([]string{s1})
	assert.NoError(t, err)
}

func TestConfig(t *testing.T) {
	t.Parallel()

	t.Run("create from config", func(t *testing.T) {
		t.Parallel()
		cfg := cookie.DefaultConfig()
		cfg.Secrets = testSecret
		cfg.Secure = true
		cfg.Path = "/app"

		m, err := cookie.NewFromConfig(cfg)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, m.Set(w, "test", "v"))

		c := w.Result().Cookies()[0]
		assert.Equal(t, "/app", c.Path)
		assert.True(t, c.Secure)
		assert.True(t, c.HttpOnly)
	})

	t.Run("parse comma-separated secrets", func(t *testing.T) {
		t.Parallel()
		cfg := cookie.Config{Secrets: testSecret + ", ," + testSecret2}

		assert.Equal(t, []string{testSecret, testSecret2}, cfg.SecretList())
	})

	t.Run("missing secrets", func(t *testing.T) {
		t.Parallel()

		_, err := cookie.NewFromConfig(cookie.DefaultConfig())
		assert.ErrorIs(t, err, cookie.ErrNoSecret)
	})
}
