package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessionlab/core/handler"
	"github.com/dmitrymomot/sessionlab/core/response"
	"github.com/dmitrymomot/sessionlab/core/router"
	"github.com/dmitrymomot/sessionlab/middleware"
)

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	newRouter := func() router.Router[*router.Context] {
		r := router.New[*router.Context](router.WithErrorHandler(response.ErrorHandler[*router.Context]))
		r.Use(middleware.BodyLimitWithSize[*router.Context](8))
		r.Post("/echo", func(ctx *router.Context) handler.Response {
			body, err := io.ReadAll(ctx.Request().Body)
			if err != nil {
				return response.Error(response.ErrRequestEntityTooLarge.WithError(err))
			}
			return response.String(string(body))
		})
		return r
	}

	t.Run("within limit", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("12345678")))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "12345678", rec.Body.String())
	})

	t.Run("declared length too large", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("123456789")))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("unknown length capped while reading", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/echo", io.NopCloser(strings.NewReader(strings.Repeat("x", 64))))
		req.ContentLength = -1
		req.Header.Del("Content-Length")

		rec := httptest.NewRecorder()
		newRouter().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}
