package auth

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

// Claims is the token body: the subject is the user id, the role travels
// alongside so requests need no user lookup.
type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(actor access.Actor) (string, error) {
	now := t.now()
	claims := &Claims{
		Role: actor.Role.String(),
		StandardClaims: jwt.StandardClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(t.ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

func (t *TokenIssuer) Verify(tokenString string) (access.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.key, nil
	})
	if err != nil || !token.Valid {
		return access.Actor{}, fmt.Errorf("invalid token: %w", apperr.ErrUnauthenticated)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return access.Actor{}, fmt.Errorf("invalid subject: %w", apperr.ErrUnauthenticated)
	}
	role, err := access.ParseRole(claims.Role)
	if err != nil {
		return access.Actor{}, fmt.Errorf("invalid role: %w", apperr.ErrUnauthenticated)
	}
	return access.Actor{ID: id, Role: role}, nil
}
