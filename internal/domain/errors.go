package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput indicates a malformed or incomplete request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidAmount indicates an amount outside what the order allows.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidState indicates the order's state does not permit the action.
	ErrInvalidState = errors.New("invalid order state")
	// ErrUnauthorized indicates a missing or unknown API key.
	ErrUnauthorized = errors.New("unauthorized")
)
