// Package repository provides persistence implementations for user accounts.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/accountapi/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// PostgresUserRepository implements user persistence using a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// UserExists checks whether a user with the specified username exists,
// ignoring case.
func (r *PostgresUserRepository) UserExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(username) = lower($1))`,
		username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UserExists: %w", err)
	}
	return exists, nil
}

// CreateUser inserts a new user record. A username that collides with an
// existing one (case-insensitively) yields models.ErrUserExists.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, username, password_hash, password_salt) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Username, user.PasswordHash, user.PasswordSalt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.ErrUserExists
		}
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// GetUserByUsername fetches a user by username, ignoring case.
// Returns models.ErrUserNotFound when there is no match.
func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, password_salt FROM users
		WHERE lower(username) = lower($1)
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.PasswordSalt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByUsername: %w", err)
	}
	return &user, nil
}
