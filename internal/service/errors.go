package service

import "errors"

var (
	// ErrDuplicateUser is returned by Register when the username is taken.
	ErrDuplicateUser = errors.New("username already exists")
	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConfiguration is returned when the token signing secret is missing or too short.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInvalidToken is returned by ParseToken for any token that fails verification.
	ErrInvalidToken = errors.New("invalid token")
)
