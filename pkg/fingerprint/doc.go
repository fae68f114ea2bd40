// Package fingerprint derives client fingerprints from HTTP request headers.
//
// A fingerprint is a version-prefixed SHA-256 digest ("v1:" followed by 64 hex
// characters) of selected header values. Sessions store the fingerprint taken
// at creation and compare it on every later request; a different value means
// the session identifier is being presented by another client.
//
// Basic usage:
//
//	fp := fingerprint.Generate(r.Header)
//
//	// later
//	if err := fingerprint.Validate(r.Header, stored); err != nil {
//		// ErrMismatch or ErrInvalidFingerprint
//	}
//
// # Components
//
// By default only User-Agent is hashed. Options widen the input:
//   - WithAcceptHeaders: Accept, Accept-Language, Accept-Encoding
//   - WithHeaderSet: which common browser headers are present
//
// # Security Notes
//
// Header values are client controlled. A fingerprint raises the bar for
// replaying a stolen identifier from another browser, it does not prove identity.
package fingerprint
