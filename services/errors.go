package services

import "errors"

var (
	// ErrGameNotFound is returned when a game does not exist in the catalog
	ErrGameNotFound = errors.New("game not found")

	// ErrGameAlreadyInLibrary is returned when a game is already in the
	// user's library
	ErrGameAlreadyInLibrary = errors.New("game already in library")

	// ErrGameNotInLibrary is returned when a game is not in the user's library
	ErrGameNotInLibrary = errors.New("game not in library")

	// ErrInvalidStatus is returned for an unknown library status
	ErrInvalidStatus = errors.New("invalid game status")

	// ErrExternalGameNotFound is returned when a game does not exist in the
	// external catalog
	ErrExternalGameNotFound = errors.New("external game not found")

	// ErrExternalUnavailable is returned when the external catalog is down or
	// rate limiting
	ErrExternalUnavailable = errors.New("external catalog unavailable")
)
