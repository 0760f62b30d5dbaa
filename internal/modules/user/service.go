package user

import (
	"context"

	"github.com/georgemunganga/predobro/internal/modules/access"
)

// Service defines the interface for user-related business logic.
type Service interface {
	RegisterUser(ctx context.Context, req RegisterRequest) (*User, error)
	// GetUser returns the actor's own account.
	GetUser(ctx context.Context, actor access.Actor) (*User, error)
}
