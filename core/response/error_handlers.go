package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/sessionlab/core/handler"
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// convertToHTTPError converts any error to an HTTPError.
func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	baseErr, ok := httpErrorsByStatus[status]
	if !ok {
		baseErr = ErrInternalServerError
	}
	return baseErr.WithError(err)
}

// ErrorHandler is the default error handler that returns plain text errors.
// Internal errors are rendered with the generic status text so causes never reach the client.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	msg := httpErr.Message
	if httpErr.Status >= http.StatusInternalServerError {
		msg = http.StatusText(httpErr.Status)
	}
	Render(ctx, StringWithStatus(msg, httpErr.Status))
}
