package middleware

import (
	"errors"
	"fmt"
	"io"

	"github.com/dmitrymomot/sessionlab/core/handler"
	"github.com/dmitrymomot/sessionlab/core/response"
)

// ErrBodyTooLarge is returned by the request body reader once the limit is exceeded.
var ErrBodyTooLarge = errors.New("request body too large")

// BodyLimitConfig configures the request body limit middleware.
type BodyLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool

	// MaxSize is the maximum allowed size in bytes (default: 1MB)
	MaxSize int64

	// ErrorHandler handles requests whose Content-Length exceeds the limit
	ErrorHandler func(ctx handler.Context, contentLength int64, maxSize int64) handler.Response
}

// BodyLimit creates a body limit middleware with default configuration (1MB limit).
func BodyLimit[C handler.Context]() handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{})
}

// BodyLimitWithSize creates a body limit middleware with a specified size limit.
func BodyLimitWithSize[C handler.Context](maxSize int64) handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{
		MaxSize: maxSize,
	})
}

// BodyLimitWithConfig creates a body limit middleware with custom configuration.
// Requests that declare a larger Content-Length are rejected before the handler runs;
// bodies without a declared length fail with ErrBodyTooLarge while being read.
func BodyLimitWithConfig[C handler.Context](cfg BodyLimitConfig) handler.Middleware[C] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = MB
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx handler.Context, contentLength int64, maxSize int64) handler.Response {
			return response.Error(response.ErrRequestEntityTooLarge.WithMessage(
				fmt.Sprintf("Request body too large. Size: %d bytes, Maximum allowed: %d bytes", contentLength, maxSize),
			))
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()

			if req.ContentLength > cfg.MaxSize {
				return cfg.ErrorHandler(ctx, req.ContentLength, cfg.MaxSize)
			}

			if req.Body != nil {
				req.Body = &limitedReader{reader: req.Body, limit: cfg.MaxSize}
			}

			return next(ctx)
		}
	}
}

// limitedReader wraps an io.ReadCloser to enforce a size limit.
type limitedReader struct {
	reader io.ReadCloser
	limit  int64
	read   int64
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	if lr.read > lr.limit {
		return 0, ErrBodyTooLarge
	}

	// Allow one byte past the limit so an exact-size body still reads to EOF
	remaining := lr.limit - lr.read + 1
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := lr.reader.Read(p)
	lr.read += int64(n)
	if lr.read > lr.limit {
		return n - int(lr.read-lr.limit), ErrBodyTooLarge
	}
	return n, err
}

func (lr *limitedReader) Close() error {
	return lr.reader.Close()
}

// Common size constants for convenience
const (
	KB int64 = 1024
	MB       = 1024 * KB
)
