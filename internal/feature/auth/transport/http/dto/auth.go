// Package dto defines the request bodies of the auth endpoints.
package dto

// RegisterReq is the body of POST /auth/register.
type RegisterReq struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"omitempty,e164"`
	Role      string `json:"role" binding:"omitempty,oneof=customer agent admin"`
}

// LoginReq is the body of POST /auth/login.
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshReq carries a refresh token (refresh and logout).
type RefreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ForgotPasswordReq is the body of POST /auth/forgot-password.
type ForgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordReq is the body of POST /auth/reset-password.
type ResetPasswordReq struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// VerifyEmailReq is the body of POST /auth/verify-email.
type VerifyEmailReq struct {
	Token string `json:"token" binding:"required"`
}

// MessageRes is a plain confirmation.
type MessageRes struct {
	Message string `json:"message"`
}
