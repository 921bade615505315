// Package handler provides the HTTP handlers of the claims feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"insurance_backend/internal/feature/claims/domain/entity"
	"insurance_backend/internal/feature/claims/transport/http/dto"
	"insurance_backend/internal/feature/claims/usecase"
	"insurance_backend/internal/platform/http/apierror"
	jwtmw "insurance_backend/internal/platform/jwt"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

// ClaimsUsecase is the claims usecase as seen by the handler.
type ClaimsUsecase interface {
	Submit(ctx context.Context, actor access.Actor, in usecase.SubmitInput) (*entity.Claim, error)
	Get(ctx context.Context, actor access.Actor, id string) (*entity.Claim, error)
	List(ctx context.Context, actor access.Actor, filter usecase.Filter) (record.List[entity.Claim], error)
	Review(ctx context.Context, actor access.Actor, id string) (*entity.Claim, error)
	Investigate(ctx context.Context, actor access.Actor, id string, in usecase.InvestigateInput) (*entity.Claim, error)
	Approve(ctx context.Context, actor access.Actor, id string, amount decimal.Decimal) (*entity.Claim, error)
	Deny(ctx context.Context, actor access.Actor, id, reason string) (*entity.Claim, error)
	Settle(ctx context.Context, actor access.Actor, id string, amount decimal.Decimal) (*entity.Claim, error)
	Close(ctx context.Context, actor access.Actor, id string) (*entity.Claim, error)
}

// ClaimsHandler handles the /claims routes.
type ClaimsHandler struct {
	claims ClaimsUsecase
}

// NewClaimsHandler creates a new ClaimsHandler.
func NewClaimsHandler(claims ClaimsUsecase) *ClaimsHandler {
	return &ClaimsHandler{claims: claims}
}

// Submit handles POST /claims.
func (h *ClaimsHandler) Submit(c *gin.Context) {
	var req dto.SubmitClaimReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	claim, err := h.claims.Submit(c.Request.Context(), actor, req.Input())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

// Get handles GET /claims/:id.
func (h *ClaimsHandler) Get(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	claim, err := h.claims.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

// List handles GET /claims with optional status, policy and pagination filters.
func (h *ClaimsHandler) List(c *gin.Context) {
	var q dto.ListClaimsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	list, err := h.claims.List(c.Request.Context(), actor, usecase.Filter{
		PolicyID: q.PolicyID,
		Status:   entity.Status(q.Status),
		Page:     q.Page,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Review handles POST /claims/:id/review (staff only).
func (h *ClaimsHandler) Review(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	h.respond(c, func(ctx context.Context) (*entity.Claim, error) {
		return h.claims.Review(ctx, actor, c.Param("id"))
	})
}

// Investigate handles POST /claims/:id/investigate (staff only).
func (h *ClaimsHandler) Investigate(c *gin.Context) {
	var req dto.InvestigateClaimReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	h.respond(c, func(ctx context.Context) (*entity.Claim, error) {
		return h.claims.Investigate(ctx, actor, c.Param("id"), req.Input())
	})
}

// Approve handles POST /claims/:id/approve (staff only).
func (h *ClaimsHandler) Approve(c *gin.Context) {
	var req dto.ApproveClaimReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	h.respond(c, func(ctx context.Context) (*entity.Claim, error) {
		return h.claims.Approve(ctx, actor, c.Param("id"), *req.ApprovedAmount)
	})
}

// Deny handles POST /claims/:id/deny (staff only).
func (h *ClaimsHandler) Deny(c *gin.Context) {
	var req dto.DenyClaimReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	h.respond(c, func(ctx context.Context) (*entity.Claim, error) {
		return h.claims.Deny(ctx, actor, c.Param("id"), req.Reason)
	})
}

// Settle handles POST /claims/:id/settle (staff only).
func (h *ClaimsHandler) Settle(c *gin.Context) {
	var req dto.SettleClaimReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	h.respond(c, func(ctx context.Context) (*entity.Claim, error) {
		return h.claims.Settle(ctx, actor, c.Param("id"), *req.SettledAmount)
	})
}

// Close handles POST /claims/:id/close (staff only).
func (h *ClaimsHandler) Close(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	h.respond(c, func(ctx context.Context) (*entity.Claim, error) {
		return h.claims.Close(ctx, actor, c.Param("id"))
	})
}

// respond runs a workflow step and writes the updated claim.
func (h *ClaimsHandler) respond(c *gin.Context, step func(context.Context) (*entity.Claim, error)) {
	claim, err := step(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrClaimNotFound):
		apierror.Abort(c, http.StatusNotFound, "Claim not found")
	case errors.Is(err, usecase.ErrPolicyNotFound):
		apierror.Abort(c, http.StatusNotFound, "Policy not found")
	case errors.Is(err, access.ErrForbidden):
		apierror.Abort(c, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, entity.ErrInvalidTransition):
		apierror.Abort(c, http.StatusConflict, err.Error())
	case errors.Is(err, usecase.ErrPolicyNotActive),
		errors.Is(err, usecase.ErrIncidentInFuture),
		errors.Is(err, usecase.ErrIncidentOutsideTerm),
		errors.Is(err, usecase.ErrCoverageNotIncluded),
		errors.Is(err, usecase.ErrInvalidAmount),
		errors.Is(err, usecase.ErrExceedsCoverageLimit),
		errors.Is(err, usecase.ErrExceedsApprovedAmount),
		errors.Is(err, usecase.ErrReasonRequired),
		errors.Is(err, usecase.ErrInvalidFraudScore):
		apierror.Abort(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("claims request failed", "error", err, "path", c.Request.URL.Path)
		apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
	}
}
