// Package session resolves who is calling from the identity provider's
// bearer token. The resolved Session travels in the request context.
package session

import "context"

type Role string

const (
	RoleTenant Role = "tenant"
	RoleAdmin  Role = "admin"
)

// Session is the authenticated caller of one request.
type Session struct {
	UserID string
	Role   Role
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

type ctxKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by Middleware, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.UserID != ""
}
