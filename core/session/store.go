package session

import (
	"context"
	"time"
)

// Store defines the persistence interface for session records.
// Implementations must be safe for concurrent use and every mutation of a single id must be atomic.
type Store interface {
	// Get returns a copy of the record or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Create inserts a new record or returns ErrAlreadyExists.
	Create(ctx context.Context, rec Record) error

	// Put inserts or replaces a record.
	Put(ctx context.Context, rec Record) error

	// Update applies fn to the stored record atomically and persists the result.
	// Returns ErrNotFound if the record does not exist and ErrImmutableBinding
	// if fn changed the id, fingerprint or replay token.
	Update(ctx context.Context, id string, fn func(*Record) error) (Record, error)

	// Delete removes the record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes records created before the cutoff and returns the count of deleted records.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
