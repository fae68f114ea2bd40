package binding

import (
	"errors"

	"github.com/dmitrymomot/sessionlab/core/session"
)

var (
	// ErrBindingMismatch is returned when the request fingerprint or replay token differs from the record.
	ErrBindingMismatch = errors.New("session binding mismatch")
	// ErrFixationAttempt is reported when a client tries to supply its own session identifier.
	ErrFixationAttempt = errors.New("client supplied session id rejected")
	// ErrExpired is an alias of session.ErrExpired for callers that only import binding.
	ErrExpired = session.ErrExpired
	// ErrUnknownVariant is returned by New for unsupported variant names.
	ErrUnknownVariant = errors.New("unknown session variant")
	// ErrNilStore is returned when a policy is built without a store.
	ErrNilStore = errors.New("session store is required")
)
