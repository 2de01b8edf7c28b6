// Package secrets resolves named credentials for external collaborators.
package secrets

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotFound is returned when a secret is absent from the store.
var ErrNotFound = errors.New("secret not found")

// Store looks up a named secret. A missing value is a recoverable condition,
// not a fatal error.
type Store interface {
	Get(name string) (string, error)
}

// EnvStore resolves secrets from process environment variables.
type EnvStore struct{}

func (EnvStore) Get(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return v, nil
}

// Static is a fixed in-memory store, used for tests and single-tenant setups.
type Static map[string]string

func (s Static) Get(name string) (string, error) {
	v, ok := s[name]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return v, nil
}
