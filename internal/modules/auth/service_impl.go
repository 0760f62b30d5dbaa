package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/modules/user"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthenticated)

type service struct {
	userRepo user.Repository
	tokens   *TokenIssuer
}

// NewService creates a new auth service.
func NewService(userRepo user.Repository, tokens *TokenIssuer) Service {
	return &service{userRepo: userRepo, tokens: tokens}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, apperr.ErrNotFound) {
		return "", errInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", errInvalidCredentials
	}

	return s.tokens.Issue(access.Actor{ID: u.ID, Role: u.Role})
}

func (s *service) Authenticate(_ context.Context, token string) (access.Actor, error) {
	return s.tokens.Verify(token)
}
