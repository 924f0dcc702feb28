// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrInvalidArgument indicates structurally invalid caller input
	// (empty username/password, username too short, duplicate at registration).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotAuthorized indicates failed credential or token verification.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedToken indicates input that fails structural token parsing.
	// Distinct from ErrNotAuthorized: the input is not even a token.
	ErrMalformedToken = errors.New("malformed token")

	// ErrHashing indicates the password key derivation is misconfigured.
	// Treated as a fatal configuration error, never retried.
	ErrHashing = errors.New("hashing failure")

	// ErrEncoding indicates a token could not be built or signed.
	ErrEncoding = errors.New("encoding failure")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotAllowed indicates a business rule rejected the operation
	// (e.g., updating an inactive entity).
	ErrNotAllowed = errors.New("not allowed")

	// ErrMaxQuantity indicates a capacity rule rejected the operation
	// (team full, user at work item limit).
	ErrMaxQuantity = errors.New("maximum quantity reached")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
