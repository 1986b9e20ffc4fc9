package sandbox

import "errors"

var (
	// ErrUnauthorized is returned when authentication fails.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidUpload is returned for malformed multipart bodies.
	ErrInvalidUpload = errors.New("invalid upload")
)
