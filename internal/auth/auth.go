// Package auth verifies the caller's bearer token and exposes the result
// to the rest of the request pipeline.
package auth

import (
	"context"
	"time"
)

// AuthContext carries what the verified token says about the caller.
type AuthContext struct {
	Subject   string
	Scopes    []string
	ExpiresAt time.Time
}

// Authenticator verifies a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*AuthContext, error)
}

type contextKey struct{}

// WithAuthContext stores the verified caller identity in the context.
func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, authCtx)
}

// FromContext returns the verified caller identity, if any.
func FromContext(ctx context.Context) (*AuthContext, bool) {
	authCtx, ok := ctx.Value(contextKey{}).(*AuthContext)
	return authCtx, ok
}
