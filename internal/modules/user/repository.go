package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for user data storage.
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	// ListUsersByID returns the users that exist among ids, keyed by id.
	ListUsersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*User, error)
}
