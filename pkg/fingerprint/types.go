package fingerprint

import "errors"

// options configures fingerprint generation behavior.
type options struct {
	// includeUserAgent includes User-Agent header in fingerprint.
	// Default: true
	includeUserAgent bool

	// includeAcceptHeaders includes Accept-* headers in fingerprint.
	// These can change with browser extensions or language settings.
	// Default: false
	includeAcceptHeaders bool

	// includeHeaderSet includes fingerprint of which standard headers are present.
	// Default: false
	includeHeaderSet bool
}

// Option is a functional option for configuring fingerprint generation.
type Option func(*options)

// WithAcceptHeaders includes Accept, Accept-Language and Accept-Encoding values.
func WithAcceptHeaders() Option {
	return func(o *options) {
		o.includeAcceptHeaders = true
	}
}

// WithHeaderSet includes the set of standard headers present in the request.
func WithHeaderSet() Option {
	return func(o *options) {
		o.includeHeaderSet = true
	}
}

// WithoutUserAgent excludes the User-Agent header from the fingerprint.
func WithoutUserAgent() Option {
	return func(o *options) {
		o.includeUserAgent = false
	}
}

func defaultOptions() *options {
	return &options{
		includeUserAgent: true,
	}
}

func applyOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validation errors that can be checked with errors.Is()
var (
	// ErrInvalidFingerprint indicates the stored fingerprint has invalid format.
	ErrInvalidFingerprint = errors.New("invalid fingerprint format")

	// ErrMismatch indicates the fingerprint doesn't match the current request.
	// This could indicate a session hijacking attempt or a browser update.
	ErrMismatch = errors.New("fingerprint mismatch")
)
