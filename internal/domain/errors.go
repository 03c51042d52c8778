package domain

import "errors"

var (
	// ErrInvalidEntityRef is returned when an entity reference is malformed
	ErrInvalidEntityRef = errors.New("invalid entity reference")

	// ErrEntityNotFound is returned when an entity reference resolves to nothing
	ErrEntityNotFound = errors.New("entity not found")

	// ErrNotConnected is returned when operation requires connection
	ErrNotConnected = errors.New("not connected to Telegram")

	// ErrAuthenticationFailed is returned when authentication fails
	ErrAuthenticationFailed = errors.New("authentication failed")
)
