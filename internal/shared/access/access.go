// Package access holds the role model shared by every feature.
package access

import (
	"errors"
	"strings"
)

// Role is the authorization role carried by a user and by its access token.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

var (
	// ErrUnknownRole is returned by ParseRole for values outside the role set.
	ErrUnknownRole = errors.New("unknown role")

	// ErrForbidden is returned when the actor's role does not allow an operation.
	ErrForbidden = errors.New("insufficient permissions")
)

// ParseRole converts a raw value into a Role. An empty value maps to RoleCustomer.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RoleCustomer, nil
	}
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller of a usecase.
type Actor struct {
	UserID string
	Role   Role
}

// IsStaff reports whether the actor can see every customer's records.
func (a Actor) IsStaff() bool {
	return a.Role == RoleAgent || a.Role == RoleAdmin
}

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess reports whether the actor may read a record owned by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsStaff() || (a.UserID != "" && a.UserID == ownerID)
}
