package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance_backend/internal/feature/vehicles/domain/entity"
	"insurance_backend/internal/feature/vehicles/usecase"
	"insurance_backend/internal/platform/http/apierror"
	jwtmw "insurance_backend/internal/platform/jwt"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
	"insurance_backend/internal/shared/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Register()
	os.Exit(m.Run())
}

type stubVehicles struct {
	created usecase.CreateInput
	filter  usecase.Filter
	details usecase.Details
	actor   access.Actor
	err     error
}

func (s *stubVehicles) Create(_ context.Context, a access.Actor, in usecase.CreateInput) (*entity.Vehicle, error) {
	s.actor, s.created = a, in
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Vehicle{Base: record.Base{ID: "veh-1"}, VIN: in.VIN, OwnerID: a.UserID}, nil
}

func (s *stubVehicles) Get(_ context.Context, _ access.Actor, id string) (*entity.Vehicle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Vehicle{Base: record.Base{ID: id}}, nil
}

func (s *stubVehicles) List(_ context.Context, _ access.Actor, f usecase.Filter) (record.List[entity.Vehicle], error) {
	s.filter = f
	if s.err != nil {
		return record.List[entity.Vehicle]{}, s.err
	}
	return record.NewList([]entity.Vehicle{{VIN: "1HGCM82633A004352"}}, 1, f.Page), nil
}

func (s *stubVehicles) Update(_ context.Context, _ access.Actor, id string, d usecase.Details) (*entity.Vehicle, error) {
	s.details = d
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Vehicle{Base: record.Base{ID: id}}, nil
}

func (s *stubVehicles) Delete(_ context.Context, _ access.Actor, _ string) error {
	return s.err
}

func newRouter(uc VehiclesUsecase) *gin.Engine {
	h := NewVehiclesHandler(uc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextUserID, "cust-1")
		c.Set(jwtmw.ContextRole, access.RoleCustomer)
	})
	r.POST("/vehicles", h.Create)
	r.GET("/vehicles", h.List)
	r.GET("/vehicles/:id", h.Get)
	r.PATCH("/vehicles/:id", h.Update)
	r.DELETE("/vehicles/:id", h.Delete)
	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVehiclesHandler_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantField  string
	}{
		{
			name:       "created",
			body:       `{"vin":"1HGCM82633A004352","make":"Honda","model":"Accord","year":2020,"purchasePrice":"18500.00","usage":"business"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid vin",
			body:       `{"vin":"1HGCM82633I004352","make":"Honda","model":"Accord","year":2020}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "vin",
		},
		{
			name:       "missing make",
			body:       `{"vin":"1HGCM82633A004352","model":"Accord","year":2020}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "make",
		},
		{
			name:       "bad usage",
			body:       `{"vin":"1HGCM82633A004352","make":"Honda","model":"Accord","year":2020,"usage":"racing"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "usage",
		},
		{
			name:       "duplicate",
			body:       `{"vin":"1HGCM82633A004352","make":"Honda","model":"Accord","year":2020}`,
			err:        usecase.ErrDuplicateVIN,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "future year",
			body:       `{"vin":"1HGCM82633A004352","make":"Honda","model":"Accord","year":2099}`,
			err:        usecase.ErrInvalidYear,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := &stubVehicles{err: tt.err}
			w := send(newRouter(uc), http.MethodPost, "/vehicles", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantField != "" {
				var body apierror.Body
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.NotEmpty(t, body.Details)
				assert.Equal(t, tt.wantField, body.Details[0].Field)
			}
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, "cust-1", uc.actor.UserID)
				require.NotNil(t, uc.created.PurchasePrice)
				assert.Equal(t, "18500", uc.created.PurchasePrice.String())
				require.NotNil(t, uc.created.Usage)
				assert.Equal(t, entity.UsageBusiness, *uc.created.Usage)
			}
		})
	}
}

func TestVehiclesHandler_GetListUpdateDelete(t *testing.T) {
	t.Parallel()

	uc := &stubVehicles{}
	r := newRouter(uc)

	w := send(r, http.MethodGet, "/vehicles/veh-9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"veh-9"`)

	w = send(r, http.MethodGet, "/vehicles?page=3&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, record.Page{Page: 3, Limit: 10}, uc.filter.Page)

	w = send(r, http.MethodGet, "/vehicles?ownerId=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodPatch, "/vehicles/veh-9", `{"mileage":30500,"hasAbs":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.details.Mileage)
	assert.Equal(t, 30500, *uc.details.Mileage)
	require.NotNil(t, uc.details.HasABS)
	assert.True(t, *uc.details.HasABS)
	assert.Nil(t, uc.details.Make)

	w = send(r, http.MethodDelete, "/vehicles/veh-9", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestVehiclesHandler_NotFound(t *testing.T) {
	t.Parallel()

	r := newRouter(&stubVehicles{err: usecase.ErrVehicleNotFound})

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/vehicles/x", ""},
		{http.MethodPatch, "/vehicles/x", `{"color":"red"}`},
		{http.MethodDelete, "/vehicles/x", ""},
	} {
		w := send(r, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method)
		assert.Contains(t, w.Body.String(), "Vehicle not found")
	}
}
