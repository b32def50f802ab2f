// Package service provides the account and token business logic,
// delegating persistence to a UserRepository.
package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/accountapi/internal/models"
	"github.com/google/uuid"
)

// SaltSize is the length in bytes of the per-user password salt.
const SaltSize = sha512.BlockSize

var dummySalt = make([]byte, SaltSize)

// UserRepository defines the persistence operations
// required by the account service.
type UserRepository interface {
	// UserExists returns true if a user with the given username exists, ignoring case.
	UserExists(ctx context.Context, username string) (bool, error)
	// CreateUser stores a new user record. It returns models.ErrUserExists
	// if the username is already taken.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByUsername returns the user with the given username, ignoring
	// case, or models.ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AccountService implements registration and login on top of a UserRepository.
type AccountService struct {
	repo UserRepository
}

// NewAccountService constructs a new AccountService using the provided repository.
func NewAccountService(repo UserRepository) *AccountService {
	return &AccountService{repo: repo}
}

// Register creates a new user. The username is stored in lower case, and the
// password is kept only as an HMAC-SHA-512 keyed by a fresh random salt.
func (s *AccountService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrInvalidArgument
	}

	exists, err := s.repo.UserExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     strings.ToLower(username),
		PasswordHash: hashPassword(salt, password),
		PasswordSalt: salt,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrUserExists) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies the password of the named user and returns the stored record.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, models.ErrUserNotFound) {
		// Hash anyway so unknown users cost the same as wrong passwords.
		_ = hashPassword(dummySalt, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !hmac.Equal(hashPassword(user.PasswordSalt, password), user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns the user with the given username, or models.ErrUserNotFound.
func (s *AccountService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

func hashPassword(salt []byte, password string) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
