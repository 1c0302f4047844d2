package model

import "errors"

var (
	// User related errors
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already used")
	ErrUsernameTaken = errors.New("username unavailable")

	// Credential errors. Deliberately shared between "no such account" and
	// "wrong password" so responses cannot be used for account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Session/token errors
	ErrMissingToken        = errors.New("missing bearer token")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrWrongTokenType      = errors.New("invalid token type")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
