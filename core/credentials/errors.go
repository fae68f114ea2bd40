package credentials

import "errors"

var (
	ErrInvalidUserPair = errors.New("credentials: expected user:password")
	ErrNoUsers         = errors.New("credentials: no users configured")
)
