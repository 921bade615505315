// Package handler provides the HTTP handlers of the policies feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"insurance_backend/internal/feature/policies/domain/entity"
	"insurance_backend/internal/feature/policies/transport/http/dto"
	"insurance_backend/internal/feature/policies/usecase"
	"insurance_backend/internal/platform/http/apierror"
	jwtmw "insurance_backend/internal/platform/jwt"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

// PoliciesUsecase is the policies usecase as seen by the handler.
type PoliciesUsecase interface {
	Get(ctx context.Context, actor access.Actor, id string) (*entity.Policy, error)
	List(ctx context.Context, actor access.Actor, filter usecase.Filter) (record.List[entity.Policy], error)
	Summary(ctx context.Context, actor access.Actor, id string) (entity.Summary, error)
	Cancel(ctx context.Context, actor access.Actor, id, reason string) (*entity.Policy, error)
	Renew(ctx context.Context, actor access.Actor, id string) (*entity.Policy, error)
}

// PoliciesHandler handles the /policies routes.
type PoliciesHandler struct {
	policies PoliciesUsecase
}

// NewPoliciesHandler creates a new PoliciesHandler.
func NewPoliciesHandler(policies PoliciesUsecase) *PoliciesHandler {
	return &PoliciesHandler{policies: policies}
}

// Get handles GET /policies/:id.
func (h *PoliciesHandler) Get(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.policies.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// List handles GET /policies.
func (h *PoliciesHandler) List(c *gin.Context) {
	var q dto.ListPoliciesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	list, err := h.policies.List(c.Request.Context(), actor, usecase.Filter{
		VehicleID: q.VehicleID,
		Status:    entity.Status(q.Status),
		Page:      q.Page,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Status returns the computed lifecycle flags of a policy.
func (h *PoliciesHandler) Status(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	s, err := h.policies.Summary(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// Cancel handles POST /policies/:id/cancel.
func (h *PoliciesHandler) Cancel(c *gin.Context) {
	var req dto.CancelPolicyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.policies.Cancel(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Renew handles POST /policies/:id/renew.
func (h *PoliciesHandler) Renew(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.policies.Renew(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrPolicyNotFound):
		apierror.Abort(c, http.StatusNotFound, "Policy not found")
	case errors.Is(err, usecase.ErrNotCancellable),
		errors.Is(err, usecase.ErrNotRenewable),
		errors.Is(err, usecase.ErrAlreadyRenewed):
		apierror.Abort(c, http.StatusConflict, err.Error())
	case errors.Is(err, entity.ErrEffectiveAfterExpiration), errors.Is(err, entity.ErrTermTooLong):
		apierror.Abort(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("policies request failed", "error", err, "path", c.Request.URL.Path)
		apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
	}
}
