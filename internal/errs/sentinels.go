// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates rejected input (empty content, bad request fields).
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedType indicates a declared content type the scanner does not accept.
	ErrUnsupportedType = errors.New("unsupported content type")

	// ErrInsufficientCredit indicates the user's balance was zero at charge time.
	ErrInsufficientCredit = errors.New("insufficient credit")

	// ErrDuplicateContent indicates content whose fingerprint is already stored.
	// Not a real failure: scans of known content are free and side-effect free.
	ErrDuplicateContent = errors.New("duplicate content")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated user lacking the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)
