// Package models defines the core data structures for user accounts.
package models

import "errors"

var (
	// ErrUserNotFound is returned by repositories when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned by repositories when the username is already taken.
	ErrUserExists = errors.New("user already exists")
)

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Username is the login name chosen by the user, stored in lower case.
	Username string
	// PasswordHash is the HMAC-SHA-512 of the password keyed by PasswordSalt.
	PasswordHash []byte
	// PasswordSalt is the per-user random key used to hash the password.
	PasswordSalt []byte
}
