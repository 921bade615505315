// Package handler provides the HTTP handlers of the vehicles feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"insurance_backend/internal/feature/vehicles/domain/entity"
	"insurance_backend/internal/feature/vehicles/transport/http/dto"
	"insurance_backend/internal/feature/vehicles/usecase"
	"insurance_backend/internal/platform/http/apierror"
	jwtmw "insurance_backend/internal/platform/jwt"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

// VehiclesUsecase is the vehicles usecase as seen by the handler.
type VehiclesUsecase interface {
	Create(ctx context.Context, actor access.Actor, in usecase.CreateInput) (*entity.Vehicle, error)
	Get(ctx context.Context, actor access.Actor, id string) (*entity.Vehicle, error)
	List(ctx context.Context, actor access.Actor, filter usecase.Filter) (record.List[entity.Vehicle], error)
	Update(ctx context.Context, actor access.Actor, id string, d usecase.Details) (*entity.Vehicle, error)
	Delete(ctx context.Context, actor access.Actor, id string) error
}

// VehiclesHandler handles the /vehicles routes.
type VehiclesHandler struct {
	vehicles VehiclesUsecase
}

// NewVehiclesHandler creates a new VehiclesHandler.
func NewVehiclesHandler(vehicles VehiclesUsecase) *VehiclesHandler {
	return &VehiclesHandler{vehicles: vehicles}
}

// Create handles POST /vehicles.
func (h *VehiclesHandler) Create(c *gin.Context) {
	var req dto.CreateVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	v, err := h.vehicles.Create(c.Request.Context(), actor, req.Input())
	if err != nil {
		abortWithError(c, err)
		return
	}
	slog.Info("vehicle registered", "vehicle_id", v.ID, "owner_id", v.OwnerID)
	c.JSON(http.StatusCreated, v)
}

// Get handles GET /vehicles/:id.
func (h *VehiclesHandler) Get(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	v, err := h.vehicles.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// List handles GET /vehicles.
func (h *VehiclesHandler) List(c *gin.Context) {
	var q dto.ListVehiclesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	list, err := h.vehicles.List(c.Request.Context(), actor, usecase.Filter{OwnerID: q.OwnerID, Page: q.Page})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Update handles PATCH /vehicles/:id.
func (h *VehiclesHandler) Update(c *gin.Context) {
	var req dto.UpdateVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Validation(c, err)
		return
	}
	actor, _ := jwtmw.CurrentActor(c)
	v, err := h.vehicles.Update(c.Request.Context(), actor, c.Param("id"), req.Details())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Delete handles DELETE /vehicles/:id.
func (h *VehiclesHandler) Delete(c *gin.Context) {
	actor, _ := jwtmw.CurrentActor(c)
	if err := h.vehicles.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrVehicleNotFound):
		apierror.Abort(c, http.StatusNotFound, "Vehicle not found")
	case errors.Is(err, usecase.ErrDuplicateVIN):
		apierror.Abort(c, http.StatusConflict, "Vehicle with this VIN already exists")
	case errors.Is(err, usecase.ErrInvalidVIN), errors.Is(err, usecase.ErrInvalidYear):
		apierror.Abort(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("vehicles request failed", "error", err, "path", c.Request.URL.Path)
		apierror.Abort(c, http.StatusInternalServerError, "Internal server error")
	}
}
