// Package handler provides the HTTP handlers of the users feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"insurance_backend/internal/feature/auth/domain/entity"
	"insurance_backend/internal/feature/users/transport/http/dto"
	"insurance_backend/internal/feature/users/usecase"
	"insurance_backend/internal/platform/http/apierror"
	jwtmw "insurance_backend/internal/platform/jwt"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

// UsersUsecase is the users usecase as seen by the handler.
type UsersUsecase interface {
	GetProfile(ctx context.Context, actor access.Actor) (*entity.User, error)
	UpdateProfile(ctx context.Context, actor access.Actor, patch usecase.ProfilePatch) (*entity.User, error)
	List(ctx context.Context, actor access.Actor, page record.Page) (record.List[entity.User], error)
	SetActive(ctx context.Context, actor access.Actor, id string, active bool) (*entity.User, error)
}

// UsersHandler handles the /users routes.
type UsersHandler struct {
	users UsersUsecase
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(users UsersUsecase) *UsersHandler {
	return &UsersHandler{users: users}
}

// GetProfile handles GET /users/me.
func (h *UsersHandler) GetProfile(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	user, err := h.users.GetProfile(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PATCH /users/me.
func (h *UsersHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}

	actor, _ := jwtmw.CurrentActor(c)
	user, err := h.users.UpdateProfile(c.Request.Context(), actor, usecase.ProfilePatch{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Phone:             req.Phone,
		DateOfBirth:       req.DateOfBirth,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		ZipCode:           req.ZipCode,
		Country:           req.Country,
		LicenseNumber:     req.LicenseNumber,
		LicenseExpiryDate: req.LicenseExpiryDate,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// List handles GET /users (staff only).
func (h *UsersHandler) List(c *gin.Context) {
	var page record.Page
	if err := c.ShouldBindQuery(&page); err != nil {
		apierror.Validation(c, err)
		return
	}

	actor, _ := jwtmw.CurrentActor(c)
	list, err := h.users.List(c.Request.Context(), actor, page)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SetStatus handles PATCH /users/:id/status (admin only).
func (h *UsersHandler) SetStatus(c *gin.Context) {
	var req dto.SetStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}

	actor, _ := jwtmw.CurrentActor(c)
	user, err := h.users.SetActive(c.Request.Context(), actor, c.Param("id"), *req.IsActive)
	if err != nil {
		abortWithError(c, err)
		return
	}
	slog.Info("user status changed", "user_id", user.ID, "active", user.IsActive, "by", actor.UserID)
	c.JSON(http.StatusOK, user)
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		apierror.Abort(c, http.StatusNotFound, "User not found")
	case errors.Is(err, access.ErrForbidden):
		apierror.Abort(c, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, usecase.ErrSelfDeactivation):
		apierror.Abort(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("users request failed", "error", err, "path", c.Request.URL.Path)
		apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
	}
}
