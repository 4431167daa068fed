// Package session carries the authenticated staff identity through a
// request. It replaces ambient auth globals with an explicit value that
// is set once per request and torn down with it.
package session

import (
	"context"

	"tablepay/internal/domain"
)

// Session identifies the acting staff member.
type Session struct {
	StaffID string
	Role    domain.Role
}

type ctxKey struct{}

// WithSession attaches the session to the context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session, reporting whether one was set.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
