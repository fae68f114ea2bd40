package session

import (
	"time"
)

// Record is the server-side state of one session.
// Records are passed by value; stores hand out copies and never share memory with callers.
type Record struct {
	// ID is the opaque session identifier and the store key.
	ID string `json:"id"`

	// CreatedAt is used by expiring policies to compute the session age.
	CreatedAt time.Time `json:"created_at"`

	// Fingerprint binds the session to client metadata. Empty for unbound sessions.
	Fingerprint string `json:"fingerprint,omitempty"`

	// ReplayToken is a secondary secret mirrored into the client payload. Empty for unbound sessions.
	ReplayToken string `json:"replay_token,omitempty"`

	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// NewRecord creates an anonymous record with the given id.
func NewRecord(id string, createdAt time.Time) Record {
	return Record{
		ID:        id,
		CreatedAt: createdAt,
	}
}

// NewBoundRecord creates an anonymous record with a fresh random id and replay token
// bound to the given fingerprint.
func NewBoundRecord(fingerprint string, createdAt time.Time) (Record, error) {
	token, err := NewToken()
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID:          NewID(),
		CreatedAt:   createdAt,
		Fingerprint: fingerprint,
		ReplayToken: token,
	}, nil
}

// Authenticate marks the record as authenticated by username.
// Both fields flip together so the record never holds one without the other.
func (r *Record) Authenticate(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	r.Authenticated = true
	r.Username = username
	return nil
}

// IsAuthenticated returns true if the record belongs to a logged in user.
func (r Record) IsAuthenticated() bool {
	return r.Authenticated && r.Username != ""
}

// IsBound returns true if the record carries client binding attributes.
func (r Record) IsBound() bool {
	return r.Fingerprint != "" || r.ReplayToken != ""
}

// IsExpired reports whether the record is older than timeout at the given time.
// A non-positive timeout disables expiry.
func (r Record) IsExpired(timeout time.Duration, now time.Time) bool {
	if timeout <= 0 {
		return false
	}
	return now.Sub(r.CreatedAt) > timeout
}

// Validate checks the record invariants enforced by every store.
func (r Record) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if r.Authenticated != (r.Username != "") {
		return ErrInvalidRecord
	}
	return nil
}

// ValidateUpdate checks that an in-place update kept the identity and binding of the record.
func ValidateUpdate(before, after Record) error {
	if before.ID != after.ID ||
		before.Fingerprint != after.Fingerprint ||
		before.ReplayToken != after.ReplayToken {
		return ErrImmutableBinding
	}
	return after.Validate()
}
