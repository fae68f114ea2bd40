package auth

import "errors"

var (
	// ErrInvalidCredentials reports a rejected username or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingDependency is returned by New when a dependency is nil.
	ErrMissingDependency = errors.New("auth: policy, store and verifier are required")
)
