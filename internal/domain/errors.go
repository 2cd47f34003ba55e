package domain

import "errors"

var (
	// ErrNotFound is returned when an update targets an id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when an email belongs to another user.
	ErrEmailTaken = errors.New("email already exists")
)
