package clientcli

import "errors"

// Errors for configuration validation.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrRemoteNameRequired = errors.New("remote file name is required")
)

// ErrUnknownFormat is returned by NewFormatter for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")
