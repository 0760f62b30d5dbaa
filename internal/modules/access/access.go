// Package access defines who is acting on a request and the role checks every
// service runs before touching carts, orders or items.
package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

// Role is the closed set of actor roles.
type Role int

const (
	RoleUnknown Role = iota
	RoleCustomer
	RoleStore
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "CUSTOMER"
	case RoleStore:
		return "STORE"
	case RoleAdmin:
		return "ADMIN"
	case RoleUnknown:
		return "UNKNOWN"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole accepts the canonical upper-case names case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CUSTOMER":
		return RoleCustomer, nil
	case "STORE":
		return RoleStore, nil
	case "ADMIN":
		return RoleAdmin, nil
	}
	return RoleUnknown, apperr.Invalid("role", "must be one of: CUSTOMER, STORE, ADMIN")
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Actor is the authenticated caller. It is passed explicitly into every
// service operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Require fails with ErrForbidden unless the actor holds one of roles.
func Require(a Actor, roles ...Role) error {
	if a.ID == uuid.Nil {
		return apperr.ErrUnauthenticated
	}
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%s may not perform this action: %w", a.Role, apperr.ErrForbidden)
}

type ctxKey struct{}

// WithActor stores the actor on ctx. Only the auth middleware calls this.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the actor placed on ctx by the auth middleware.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}
