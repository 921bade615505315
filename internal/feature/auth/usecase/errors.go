// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email, ID or token.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("user with this email already exists")

	// ErrInvalidCredentials is returned for an unknown email, a wrong password or an inactive account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWeakPassword is returned when a password does not meet the length requirement.
	ErrWeakPassword = errors.New("password must be at least 8 characters long")

	// ErrInvalidRole is returned when registering with a role outside the role set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidRefreshToken is returned when a refresh token is malformed, expired, revoked or
	// belongs to an inactive user.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrInvalidResetToken is returned when a password reset token is unknown or expired.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrInvalidVerificationToken is returned when an email verification token is unknown.
	ErrInvalidVerificationToken = errors.New("invalid verification token")
)
