// Package credentials verifies username and password pairs.
//
// Static holds plaintext passwords configured through AUTH_USERS
// ("user:password,..."). It exists for demonstrations only; plug a real
// Verifier into auth.Service for anything else.
package credentials
