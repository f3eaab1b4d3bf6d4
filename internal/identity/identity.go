// Package identity verifies bearer tokens against the external identity
// service and threads the verified identity through request contexts.
package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when the identity service rejects a token
// (malformed, expired, wrong issuer). Callers treat it as "no identity"
// and must not expose the underlying detail to the client.
var ErrInvalidToken = errors.New("invalid token")

// Identity is a verified caller: the stable subject id plus the claims the
// identity service vouches for.
type Identity struct {
	Subject string         `json:"subject"`
	Email   string         `json:"email"`
	Claims  map[string]any `json:"claims,omitempty"`
}

// Verifier validates an opaque bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type ctxKey struct{}

// NewContext attaches a verified identity to ctx.
func NewContext(parent context.Context, ident Identity) context.Context {
	return context.WithValue(parent, ctxKey{}, ident)
}

// FromContext returns the verified identity for this request, if any.
// Anonymous requests carry no identity; the second return value makes
// "authenticated" a type-level check rather than an empty-field one.
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ctxKey{}).(Identity)
	return ident, ok
}

// Static is a fixed token table. Tests and local development only.
type Static map[string]Identity

func (s Static) Verify(_ context.Context, token string) (Identity, error) {
	ident, ok := s[token]
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return ident, nil
}
