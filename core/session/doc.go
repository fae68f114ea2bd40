// Package session provides the server-side session model and its storage.
//
// The package keeps the two halves of session state explicit:
//
//   - Record: server-side state, the single source of truth, kept in a Store
//   - Payload: the client-side mirror carried in an encrypted cookie
//
// Payload.Sync is the only function that moves server state into the client payload.
//
// # Records
//
// A Record holds the session identifier, its creation time, the optional client
// binding (fingerprint and replay token) and the authentication flags. Records
// are values; stores always return copies, so a handler can never observe a
// partially applied mutation made by another request.
//
// Invariants enforced by every store:
//
//   - Authenticated is true if and only if Username is set
//   - Update can never change ID, Fingerprint or ReplayToken
//
// # Stores
//
// MemoryStore is the default implementation:
//
//	store := session.NewMemoryStore()
//
//	rec, err := session.NewBoundRecord(fp, time.Now())
//	if err != nil {
//		return err
//	}
//	if err := store.Create(ctx, rec); err != nil {
//		return err
//	}
//
//	// Atomic read-modify-write for a single id
//	rec, err = store.Update(ctx, rec.ID, func(r *session.Record) error {
//		return r.Authenticate("alice")
//	})
//
// A redis-backed Store lives in integration/sessionstore/redisstore.
//
// # Expiry
//
// Expiry is a passive comparison (Record.IsExpired) performed at lookup time.
// Cleanup runs an optional background sweeper that bounds memory growth:
//
//	g.Go(session.Cleanup(ctx, session.CleanupConfig{
//		Store:    store,
//		Timeout:  cfg.Timeout,
//		Interval: cfg.CleanupInterval,
//	}))
//
// # Error Handling
//
// The package defines sentinel errors that can be checked with errors.Is():
//
//   - ErrNotFound, ErrAlreadyExists: store lookups and inserts
//   - ErrExpired: record older than the timeout
//   - ErrInvalidRecord, ErrEmptyID, ErrEmptyUsername, ErrImmutableBinding: invariant violations
//   - ErrTokenGeneration: crypto/rand failure
package session
