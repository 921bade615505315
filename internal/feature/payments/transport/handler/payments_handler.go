// Package handler provides the HTTP handlers of the payments feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"insurance_backend/internal/feature/payments/domain/entity"
	"insurance_backend/internal/feature/payments/transport/http/dto"
	"insurance_backend/internal/feature/payments/usecase"
	"insurance_backend/internal/platform/http/apierror"
	jwtmw "insurance_backend/internal/platform/jwt"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

// PaymentsUsecase is the payments usecase as seen by the handler.
type PaymentsUsecase interface {
	Create(ctx context.Context, actor access.Actor, in usecase.CreateInput) (*entity.Payment, error)
	Get(ctx context.Context, actor access.Actor, id string) (*entity.Payment, error)
	List(ctx context.Context, actor access.Actor, filter usecase.Filter) (record.List[entity.Payment], error)
	Process(ctx context.Context, actor access.Actor, id string) (*entity.Payment, error)
	Complete(ctx context.Context, actor access.Actor, id string, providerTransactionID *string) (*entity.Payment, error)
	Fail(ctx context.Context, actor access.Actor, id, reason string) (*entity.Payment, error)
	Refund(ctx context.Context, actor access.Actor, id string) (*entity.Payment, error)
	Cancel(ctx context.Context, actor access.Actor, id string) (*entity.Payment, error)
}

// PaymentsHandler handles the /payments routes.
type PaymentsHandler struct {
	payments PaymentsUsecase
}

// NewPaymentsHandler creates a new PaymentsHandler.
func NewPaymentsHandler(payments PaymentsUsecase) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// Create handles POST /payments.
func (h *PaymentsHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.payments.Create(c.Request.Context(), actor, req.Input())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get handles GET /payments/:id.
func (h *PaymentsHandler) Get(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.payments.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// List handles GET /payments.
func (h *PaymentsHandler) List(c *gin.Context) {
	var q dto.ListPaymentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	list, err := h.payments.List(c.Request.Context(), actor, usecase.Filter{
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

// Process handles POST /payments/:id/process (staff only).
func (h *PaymentsHandler) Process(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.payments.Process(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Complete accepts an empty body when the provider reference is unknown.
func (h *PaymentsHandler) Complete(c *gin.Context) {
	var req dto.CompletePaymentReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierror.Validation(c, err)
			return
		}
	}
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.payments.Complete(c.Request.Context(), actor, c.Param("id"), req.ProviderTransactionID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Fail handles POST /payments/:id/fail (staff only).
func (h *PaymentsHandler) Fail(c *gin.Context) {
	var req dto.FailPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.payments.Fail(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Refund handles POST /payments/:id/refund (staff only).
func (h *PaymentsHandler) Refund(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.payments.Refund(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Cancel handles POST /payments/:id/cancel.
func (h *PaymentsHandler) Cancel(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.payments.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrPaymentNotFound):
		apierror.Abort(c, http.StatusNotFound, "Payment not found")
	case errors.Is(err, usecase.ErrPolicyNotFound):
		apierror.Abort(c, http.StatusNotFound, "Policy not found")
	case errors.Is(err, access.ErrForbidden):
		apierror.Abort(c, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, entity.ErrInvalidStatus):
		apierror.Abort(c, http.StatusConflict, err.Error())
	case errors.Is(err, usecase.ErrInvalidAmount),
		errors.Is(err, usecase.ErrInvalidMethod),
		errors.Is(err, usecase.ErrInvalidType),
		errors.Is(err, usecase.ErrFailureReasonRequired):
		apierror.Abort(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("payments request failed", "error", err, "path", c.Request.URL.Path)
		apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
	}
}
