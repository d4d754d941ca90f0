package application

import "errors"

// Outcomes callers map to responses. Anything else returned by the services
// is an infrastructure failure.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)
