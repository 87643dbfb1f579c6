package domain

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when a request cannot be bound to a
// principal. The wrapped cause is for logs only.
var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the identity bound to a single request after its bearer
// token was verified. It is never persisted.
type Principal struct {
	Username    string
	DisplayName string
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal bound by the auth middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

type clientIPKey struct{}

// WithClientIP returns a copy of ctx carrying the caller's network address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIPFromContext returns the address set by WithClientIP, or "".
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
