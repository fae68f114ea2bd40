package lab

import "errors"

var (
	ErrNilOption    = errors.New("app option value cannot be nil")
	ErrUnknownStore = errors.New("unknown session store")
)
