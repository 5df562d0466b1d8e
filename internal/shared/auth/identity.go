// Package auth carries the authenticated caller through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
)

// Role enumerates the account roles known to the storefront.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Identity is the resolved caller of a request.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CanAccess reports whether the caller may see a resource owned by ownerID.
func (i Identity) CanAccess(ownerID int64) bool {
	return i.IsAdmin() || (i.UserID != 0 && i.UserID == ownerID)
}

var (
	// ErrForbidden is returned when the caller lacks the rights for an operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated is returned when an operation needs a signed-in caller.
	ErrUnauthenticated = errors.New("authentication required")
)

// RequireUser returns ErrUnauthenticated for the zero identity.
func RequireUser(id Identity) error {
	if id.UserID <= 0 {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin returns ErrForbidden unless the caller is an admin.
func RequireAdmin(id Identity) error {
	if err := RequireUser(id); err != nil {
		return err
	}
	if !id.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}

type identityKey struct{}

// WithIdentity stores the identity on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != 0
}
