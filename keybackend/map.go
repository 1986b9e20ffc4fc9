// Package keybackend provides basic-auth credential stores for the sandbox
// server.
package keybackend

import (
	"crypto/subtle"
	"fmt"
)

// MapUserStore verifies credentials against an in-memory map.
type MapUserStore struct {
	users map[string]string
}

// NewMapUserStore creates a store from a username to password mapping.
func NewMapUserStore(users map[string]string) *MapUserStore {
	return &MapUserStore{users: users}
}

// Len returns the number of known users.
func (s *MapUserStore) Len() int {
	return len(s.users)
}

// Verify checks the password of username in constant time.
func (s *MapUserStore) Verify(username, password string) error {
	want, found := s.users[username]
	if !found {
		return fmt.Errorf("%q: %w", username, ErrUserNotFound)
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(password)) != 1 {
		return fmt.Errorf("%q: %w", username, ErrBadPassword)
	}
	return nil
}
