// Package common defines sentinel errors and small helpers shared by the
// signup, login, storage and front-end layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Form-level errors.
	ErrorValidation = errors.New("validation error")

	// Authentication errors. A single value covers both an unknown email and
	// a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")

	// Storage errors.
	ErrStoreCorrupted = errors.New("stored user list is corrupted")
	ErrUnknownBackend = errors.New("unknown store backend")

	// Flow state errors.
	ErrIndexOutOfRange  = errors.New("user index out of range")
	ErrNoEditInProgress = errors.New("no edit in progress")

	ErrorInternal = errors.New("internal error")
)
