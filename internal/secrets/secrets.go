// Package secrets provides the token-signing secret to the authenticator.
package secrets

import (
	"context"
	"errors"
)

// Source yields the current signing secret. Implementations must be safe
// for concurrent use; Get is called on every token verification.
type Source interface {
	Get(ctx context.Context) (string, error)
}

// Static is a fixed in-memory secret for local and test setups.
type Static struct {
	value string
}

// NewStatic creates a static secret source.
func NewStatic(value string) *Static {
	return &Static{value: value}
}

// Get returns the configured secret.
func (s *Static) Get(ctx context.Context) (string, error) {
	if s.value == "" {
		return "", errors.New("no signing secret configured")
	}
	return s.value, nil
}
