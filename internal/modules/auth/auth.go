package auth

import (
	"context"

	"github.com/georgemunganga/predobro/internal/modules/access"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login checks credentials and returns a signed bearer token.
	Login(ctx context.Context, email, password string) (string, error)
	// Authenticate verifies a bearer token and returns the actor it names.
	Authenticate(ctx context.Context, token string) (access.Actor, error)
}
