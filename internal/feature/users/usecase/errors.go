// Package usecase implements profile and account administration.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when the target user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrSelfDeactivation is returned when an admin tries to deactivate their own account.
	ErrSelfDeactivation = errors.New("cannot change the status of your own account")
)
