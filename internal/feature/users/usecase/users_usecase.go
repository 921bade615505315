package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"insurance_backend/internal/feature/auth/domain/entity"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

// UserRepository is the persistence needed by profile management.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context, page record.Page) ([]entity.User, int64, error)
	Update(ctx context.Context, u *entity.User) error
	SetActive(ctx context.Context, id string, active bool) error
}

// SessionRevoker ends every refresh session of a user.
type SessionRevoker interface {
	RevokeAllByUserID(ctx context.Context, userID string) error
}

// ProfilePatch lists the self-service fields. Nil fields are left unchanged.
type ProfilePatch struct {
	FirstName         *string
	LastName          *string
	Phone             *string
	DateOfBirth       *time.Time
	Address           *string
	City              *string
	State             *string
	ZipCode           *string
	Country           *string
	LicenseNumber     *string
	LicenseExpiryDate *time.Time
}

type usersUsecase struct {
	users    UserRepository
	sessions SessionRevoker
}

// NewUsersUsecase creates a new usersUsecase instance.
func NewUsersUsecase(users UserRepository, sessions SessionRevoker) *usersUsecase {
	return &usersUsecase{users: users, sessions: sessions}
}

// GetProfile returns the actor's own account.
func (u *usersUsecase) GetProfile(ctx context.Context, actor access.Actor) (*entity.User, error) {
	return u.users.FindByID(ctx, actor.UserID)
}

// UpdateProfile applies patch to the actor's own account.
func (u *usersUsecase) UpdateProfile(ctx context.Context, actor access.Actor, patch ProfilePatch) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	setOptional(&user.Phone, patch.Phone)
	setOptional(&user.Address, patch.Address)
	setOptional(&user.City, patch.City)
	setOptional(&user.State, patch.State)
	setOptional(&user.ZipCode, patch.ZipCode)
	setOptional(&user.Country, patch.Country)
	setOptional(&user.LicenseNumber, patch.LicenseNumber)
	if patch.DateOfBirth != nil {
		user.DateOfBirth = patch.DateOfBirth
	}
	if patch.LicenseExpiryDate != nil {
		user.LicenseExpiryDate = patch.LicenseExpiryDate
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// setOptional copies v into dst; an empty string clears the field.
func setOptional(dst **string, v *string) {
	if v == nil {
		return
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		*dst = nil
		return
	}
	*dst = &s
}

// List pages through every account. Staff only.
func (u *usersUsecase) List(ctx context.Context, actor access.Actor, page record.Page) (record.List[entity.User], error) {
	if !actor.IsStaff() {
		return record.List[entity.User]{}, access.ErrForbidden
	}
	users, total, err := u.users.List(ctx, page)
	if err != nil {
		return record.List[entity.User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	return record.NewList(users, total, page), nil
}

// SetActive enables or disables an account. Admin only. Deactivation also ends every
// refresh session of the user.
func (u *usersUsecase) SetActive(ctx context.Context, actor access.Actor, id string, active bool) (*entity.User, error) {
	if !actor.IsAdmin() {
		return nil, access.ErrForbidden
	}
	if id == actor.UserID {
		return nil, ErrSelfDeactivation
	}
	if err := u.users.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	if !active {
		if err := u.sessions.RevokeAllByUserID(ctx, id); err != nil {
			slog.Warn("failed to revoke sessions of deactivated user", "user_id", id, "error", err)
		}
	}
	return u.users.FindByID(ctx, id)
}
