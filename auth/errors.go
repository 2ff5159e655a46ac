package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not match. Callers must not be able to tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired is returned when a token's expiry is in the past
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed is returned for structurally invalid token input
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenSignature is returned when the token signature does not verify
	ErrTokenSignature = errors.New("token signature invalid")

	// ErrPrincipalNotFound is returned when a subject does not resolve to an
	// existing user
	ErrPrincipalNotFound = errors.New("principal not found")
)
