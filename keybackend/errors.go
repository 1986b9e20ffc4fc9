package keybackend

import "errors"

var (
	// ErrUserNotFound is returned when the username does not exist in the store.
	ErrUserNotFound = errors.New("user not found")
	// ErrBadPassword is returned when the password does not match.
	ErrBadPassword = errors.New("password mismatch")
)
