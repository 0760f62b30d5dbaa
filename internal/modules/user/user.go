package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/predobro/internal/modules/access"
)

// User is a marketplace account: a customer, a store, or an admin.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	FullName     string      `json:"full_name"`
	Address      string      `json:"address,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Role         access.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// RegisterRequest is the payload for creating an account. Admins are not
// self-registrable.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Address  string `json:"address" validate:"max=200"`
	Phone    string `json:"phone" validate:"max=20"`
	Role     string `json:"role" validate:"required,oneof=CUSTOMER STORE customer store"`
}
