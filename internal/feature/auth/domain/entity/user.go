package entity

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

// PasswordCost is the bcrypt cost used for stored passwords.
const PasswordCost = 12

// User is an account of a customer, agent or administrator.
// Secrets never leave the service: Password and the one-time tokens are excluded from JSON.
type User struct {
	record.Base
	FirstName              string      `gorm:"size:100;not null" json:"firstName"`
	LastName               string      `gorm:"size:100;not null" json:"lastName"`
	Email                  string      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password               string      `gorm:"size:255;not null" json:"-"`
	Phone                  *string     `gorm:"size:20" json:"phone,omitempty"`
	DateOfBirth            *time.Time  `gorm:"type:date" json:"dateOfBirth,omitempty"`
	Address                *string     `gorm:"size:255" json:"address,omitempty"`
	City                   *string     `gorm:"size:100" json:"city,omitempty"`
	State                  *string     `gorm:"size:50" json:"state,omitempty"`
	ZipCode                *string     `gorm:"size:20" json:"zipCode,omitempty"`
	Country                *string     `gorm:"size:50" json:"country,omitempty"`
	LicenseNumber          *string     `gorm:"size:20" json:"licenseNumber,omitempty"`
	LicenseExpiryDate      *time.Time  `gorm:"type:date" json:"licenseExpiryDate,omitempty"`
	Role                   access.Role `gorm:"size:20;not null;default:customer" json:"role"`
	IsEmailVerified        bool        `gorm:"not null;default:false" json:"isEmailVerified"`
	EmailVerificationToken *string     `gorm:"size:255;index" json:"-"`
	PasswordResetToken     *string     `gorm:"size:255;index" json:"-"`
	PasswordResetExpires   *time.Time  `json:"-"`
	LastLoginAt            *time.Time  `json:"lastLoginAt,omitempty"`
	IsActive               bool        `gorm:"not null;default:true" json:"isActive"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// SetPassword replaces the stored hash with a hash of plain.
func (u *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// ResetTokenValid reports whether the password reset token is still usable at now.
func (u *User) ResetTokenValid(now time.Time) bool {
	return u.PasswordResetToken != nil && u.PasswordResetExpires != nil && !u.PasswordResetExpires.Before(now)
}
