package domain

import "errors"

var (
	// Store errors
	ErrStoreUnavailable = errors.New("conversation store unavailable")
	ErrPersistence      = errors.New("conversation store write failed")
	ErrContextNotFound  = errors.New("context document not found")

	// Turn validation errors
	ErrAuthRequired       = errors.New("authentication required")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrRateLimited        = errors.New("rate limit exceeded")

	// Account errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already registered")
	ErrUserNotFound       = errors.New("user not found")
)
