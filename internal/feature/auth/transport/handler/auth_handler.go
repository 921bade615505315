// Package handler provides the HTTP handlers of the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"insurance_backend/internal/feature/auth/domain/entity"
	"insurance_backend/internal/feature/auth/transport/http/dto"
	"insurance_backend/internal/feature/auth/usecase"
	"insurance_backend/internal/platform/http/apierror"
	jwtmw "insurance_backend/internal/platform/jwt"
	"insurance_backend/internal/platform/metrics"
)

// AuthUsecase is the slice of the auth usecase used over HTTP.
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput, client usecase.Client) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password string, client usecase.Client) (*usecase.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string, client usecase.Client) (*usecase.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	VerifyEmail(ctx context.Context, token string) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// AuthHandler handles the /auth routes.
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func clientOf(c *gin.Context) usecase.Client {
	return usecase.Client{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		apierror.Validation(c, err)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
	}, clientOf(c))
	if err != nil {
		metrics.AuthEvents.WithLabelValues("register", metrics.OutcomeFailure).Inc()
		switch {
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			slog.Warn("register conflict", "email", req.Email, "remote_addr", c.ClientIP())
			apierror.Abort(c, http.StatusConflict, "User with this email already exists")
		case errors.Is(err, usecase.ErrWeakPassword), errors.Is(err, usecase.ErrInvalidRole):
			apierror.Abort(c, http.StatusBadRequest, err.Error())
		default:
			slog.Error("register failed", "error", err)
			apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	metrics.AuthEvents.WithLabelValues("register", metrics.OutcomeSuccess).Inc()
	slog.Info("user registered", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, res)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		apierror.Validation(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, clientOf(c))
	if err != nil {
		metrics.AuthEvents.WithLabelValues("login", metrics.OutcomeFailure).Inc()
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// the actual cause is never disclosed to prevent user enumeration
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			apierror.Abort(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		slog.Error("login failed", "error", err)
		apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	metrics.AuthEvents.WithLabelValues("login", metrics.OutcomeSuccess).Inc()
	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, res)
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}

	tokens, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken, clientOf(c))
	if err != nil {
		metrics.AuthEvents.WithLabelValues("refresh", metrics.OutcomeFailure).Inc()
		h.abortTokenError(c, "refresh", err)
		return
	}

	metrics.AuthEvents.WithLabelValues("refresh", metrics.OutcomeSuccess).Inc()
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.abortTokenError(c, "logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) abortTokenError(c *gin.Context, op string, err error) {
	if errors.Is(err, usecase.ErrInvalidRefreshToken) {
		slog.Warn(op+" rejected", "remote_addr", c.ClientIP())
		apierror.Abort(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	slog.Error(op+" failed", "error", err)
	apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
}

// ForgotPassword handles POST /auth/forgot-password. The response never reveals whether
// the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		slog.Error("forgot password failed", "error", err)
		apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "If the email exists, a reset link has been sent"})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidResetToken):
			apierror.Abort(c, http.StatusBadRequest, "Invalid or expired reset token")
		case errors.Is(err, usecase.ErrWeakPassword):
			apierror.Abort(c, http.StatusBadRequest, err.Error())
		default:
			slog.Error("reset password failed", "error", err)
			apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Password successfully reset"})
}

// VerifyEmail handles POST /auth/verify-email.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	if err := h.auth.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, usecase.ErrInvalidVerificationToken) {
			apierror.Abort(c, http.StatusBadRequest, "Invalid verification token")
			return
		}
		slog.Error("verify email failed", "error", err)
		apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Email successfully verified"})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := jwtmw.CurrentActor(c)
	if !ok {
		apierror.Abort(c, http.StatusUnauthorized, "missing bearer token")
		return
	}
	user, err := h.auth.FindByID(c.Request.Context(), actor.UserID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			apierror.Abort(c, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("load current user failed", "error", err)
		apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, user)
}
