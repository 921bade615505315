// Package handler provides the HTTP handlers of the quotes feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	policy "insurance_backend/internal/feature/policies/domain/entity"
	"insurance_backend/internal/feature/quotes/domain/entity"
	"insurance_backend/internal/feature/quotes/transport/http/dto"
	"insurance_backend/internal/feature/quotes/usecase"
	"insurance_backend/internal/platform/http/apierror"
	jwtmw "insurance_backend/internal/platform/jwt"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

// QuotesUsecase is the quotes usecase as seen by the handler.
type QuotesUsecase interface {
	Create(ctx context.Context, actor access.Actor, in usecase.CreateInput) (*entity.Quote, error)
	Get(ctx context.Context, actor access.Actor, id string) (*entity.Quote, error)
	List(ctx context.Context, actor access.Actor, filter usecase.Filter) (record.List[entity.Quote], error)
	Accept(ctx context.Context, actor access.Actor, id string) (*policy.Policy, error)
	Decline(ctx context.Context, actor access.Actor, id string) (*entity.Quote, error)
}

// QuotesHandler handles the /quotes routes.
type QuotesHandler struct {
	quotes QuotesUsecase
}

// NewQuotesHandler creates a new QuotesHandler.
func NewQuotesHandler(quotes QuotesUsecase) *QuotesHandler {
	return &QuotesHandler{quotes: quotes}
}

// Create handles POST /quotes.
func (h *QuotesHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	q, err := h.quotes.Create(c.Request.Context(), actor, req.Input())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// Get handles GET /quotes/:id.
func (h *QuotesHandler) Get(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	q, err := h.quotes.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// List handles GET /quotes.
func (h *QuotesHandler) List(c *gin.Context) {
	var q dto.ListQuotesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	list, err := h.quotes.List(c.Request.Context(), actor, usecase.Filter{
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

// Accept issues the policy and returns it.
func (h *QuotesHandler) Accept(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	p, err := h.quotes.Accept(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Decline handles POST /quotes/:id/decline.
func (h *QuotesHandler) Decline(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	q, err := h.quotes.Decline(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrQuoteNotFound):
		apierror.Abort(c, http.StatusNotFound, "Quote not found")
	case errors.Is(err, usecase.ErrVehicleNotFound):
		apierror.Abort(c, http.StatusNotFound, "Vehicle not found")
	case errors.Is(err, usecase.ErrQuoteNotPending), errors.Is(err, usecase.ErrQuoteExpired):
		apierror.Abort(c, http.StatusConflict, err.Error())
	case errors.Is(err, usecase.ErrVehicleInactive),
		errors.Is(err, usecase.ErrNoCoverage),
		errors.Is(err, usecase.ErrInvalidAmount),
		errors.Is(err, usecase.ErrInvalidEffectiveDate),
		errors.Is(err, policy.ErrEffectiveAfterExpiration),
		errors.Is(err, policy.ErrTermTooLong):
		apierror.Abort(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("quotes request failed", "error", err, "path", c.Request.URL.Path)
		apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
	}
}
