package auth

import (
	"context"
	"errors"
)

var ErrUnauthenticated = errors.New("authentication required")

// Verifier checks a raw token. *TokenService implements it.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// Operation is any request handler the gate can protect.
type Operation[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Gate decides whether a caller may run a protected operation.
type Gate struct {
	verifier Verifier
	bypass   bool
}

// NewGate builds a gate. With bypass set every call is let through without a
// token; configuration validation refuses bypass in production.
func NewGate(verifier Verifier, bypass bool) *Gate {
	return &Gate{verifier: verifier, bypass: bypass}
}

// Check verifies the token carried by ctx and returns a context holding the
// resulting claims.
func (g *Gate) Check(ctx context.Context) (context.Context, error) {
	if g.bypass {
		return ctx, nil
	}
	token := TokenFromContext(ctx)
	if token == "" {
		return ctx, ErrUnauthenticated
	}
	claims, err := g.verifier.Verify(token)
	if err != nil {
		return ctx, err
	}
	return WithClaims(ctx, claims), nil
}

// Guard wraps op so that it only runs for an authenticated caller. The
// wrapped operation is never invoked when the check fails.
func Guard[Req, Resp any](g *Gate, op Operation[Req, Resp]) Operation[Req, Resp] {
	return func(ctx context.Context, req Req) (Resp, error) {
		ctx, err := g.Check(ctx)
		if err != nil {
			var zero Resp
			return zero, err
		}
		return op(ctx, req)
	}
}
