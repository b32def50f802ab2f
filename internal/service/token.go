package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/accountapi/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinTokenKeyLength is the shortest accepted signing secret, in characters.
	MinTokenKeyLength = 64
	// TokenValidity is how long an issued token stays valid.
	TokenValidity = 7 * 24 * time.Hour
)

// Claims is the JWT payload. NameID carries the username.
type Claims struct {
	NameID string `json:"nameid"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS512-signed access tokens.
type TokenService struct {
	key []byte
	now func() time.Time
}

// NewTokenService builds a TokenService keyed by secret. It fails with
// ErrConfiguration if the secret is missing or shorter than MinTokenKeyLength.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: no token key configured", ErrConfiguration)
	}
	if len(secret) < MinTokenKeyLength {
		return nil, fmt.Errorf("%w: token key must be at least %d characters long", ErrConfiguration, MinTokenKeyLength)
	}
	return &TokenService{key: []byte(secret), now: time.Now}, nil
}

// CreateToken returns a signed token whose nameid claim is the user's
// username, expiring TokenValidity from now.
func (s *TokenService) CreateToken(user *models.User) (string, error) {
	if user == nil || strings.TrimSpace(user.Username) == "" {
		return "", fmt.Errorf("%w: user or username cannot be empty", ErrInvalidArgument)
	}

	now := s.now().UTC()
	claims := Claims{
		NameID: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies an HS512 token signed with this service's key and
// returns the username it was issued for.
func (s *TokenService) ParseToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.NameID == "" {
		return "", ErrInvalidToken
	}
	return claims.NameID, nil
}
