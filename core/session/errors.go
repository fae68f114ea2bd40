package session

import "errors"

var (
	// ErrNotFound is returned when a session cannot be found in the store.
	ErrNotFound = errors.New("session not found")
	// ErrAlreadyExists is returned when creating a session whose id is already taken.
	ErrAlreadyExists = errors.New("session already exists")
	// ErrExpired is returned when a session is older than the configured timeout.
	ErrExpired = errors.New("session has expired")
	// ErrEmptyID is returned when storing a record without an id.
	ErrEmptyID = errors.New("session id is required")
	// ErrEmptyUsername is returned when authenticating a record without a username.
	ErrEmptyUsername = errors.New("username is required")
	// ErrInvalidRecord is returned when authenticated and username disagree.
	ErrInvalidRecord = errors.New("session record is inconsistent")
	// ErrImmutableBinding is returned when an update tries to change the id, fingerprint or replay token.
	ErrImmutableBinding = errors.New("session binding cannot be changed")
	// ErrTokenGeneration is returned when token generation fails.
	ErrTokenGeneration = errors.New("failed to generate token")
)
