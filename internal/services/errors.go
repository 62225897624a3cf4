package services

import "errors"

// Error taxonomy returned by the service layer. Handlers classify with
// errors.Is and pick the response status; anything unmatched is an
// internal error.
var (
	// ErrNotAuthenticated means there is no valid session
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotAuthorized means the caller is the wrong actor for the operation
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound means a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict means an illegal state transition or duplicate link
	ErrConflict = errors.New("conflict")

	// ErrValidation means the input is malformed or violates a domain rule
	ErrValidation = errors.New("validation failed")
)
