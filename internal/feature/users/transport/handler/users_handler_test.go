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

	"insurance_backend/internal/feature/auth/domain/entity"
	"insurance_backend/internal/feature/users/usecase"
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

type stubUsers struct {
	patch      usecase.ProfilePatch
	page       record.Page
	statusID   string
	statusFlag bool
	err        error
}

func (s *stubUsers) GetProfile(_ context.Context, a access.Actor) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.User{Base: record.Base{ID: a.UserID}, Email: "me@example.com"}, nil
}

func (s *stubUsers) UpdateProfile(_ context.Context, a access.Actor, p usecase.ProfilePatch) (*entity.User, error) {
	s.patch = p
	if s.err != nil {
		return nil, s.err
	}
	return &entity.User{Base: record.Base{ID: a.UserID}}, nil
}

func (s *stubUsers) List(_ context.Context, _ access.Actor, p record.Page) (record.List[entity.User], error) {
	s.page = p
	if s.err != nil {
		return record.List[entity.User]{}, s.err
	}
	return record.NewList([]entity.User{{Email: "a@example.com"}}, 1, p), nil
}

func (s *stubUsers) SetActive(_ context.Context, _ access.Actor, id string, active bool) (*entity.User, error) {
	s.statusID, s.statusFlag = id, active
	if s.err != nil {
		return nil, s.err
	}
	return &entity.User{Base: record.Base{ID: id}, IsActive: active}, nil
}

func newRouter(uc UsersUsecase, role access.Role) *gin.Engine {
	h := NewUsersHandler(uc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextUserID, "me")
		c.Set(jwtmw.ContextRole, role)
	})
	r.GET("/users/me", h.GetProfile)
	r.PATCH("/users/me", h.UpdateProfile)
	r.GET("/users", h.List)
	r.PATCH("/users/:id/status", h.SetStatus)
	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUsersHandler_Profile(t *testing.T) {
	t.Parallel()

	uc := &stubUsers{}
	r := newRouter(uc, access.RoleCustomer)

	w := send(r, http.MethodGet, "/users/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"me"`)

	w = send(r, http.MethodPatch, "/users/me", `{"firstName":"Jane","dateOfBirth":"1990-05-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.patch.FirstName)
	assert.Equal(t, "Jane", *uc.patch.FirstName)
	require.NotNil(t, uc.patch.DateOfBirth)
	assert.Equal(t, 1990, uc.patch.DateOfBirth.Year())
	assert.Nil(t, uc.patch.LastName)

	w = send(r, http.MethodPatch, "/users/me", `{"phone":"not-a-phone"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	uc.err = usecase.ErrUserNotFound
	w = send(r, http.MethodGet, "/users/me", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsersHandler_List(t *testing.T) {
	t.Parallel()

	uc := &stubUsers{}
	r := newRouter(uc, access.RoleAgent)

	w := send(r, http.MethodGet, "/users?page=2&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, record.Page{Page: 2, Limit: 5}, uc.page)

	var body record.List[entity.User]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body.Total)
	assert.Equal(t, 2, body.Page)

	w = send(r, http.MethodGet, "/users?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	uc.err = access.ErrForbidden
	w = send(r, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUsersHandler_SetStatus(t *testing.T) {
	t.Parallel()

	uc := &stubUsers{}
	r := newRouter(uc, access.RoleAdmin)

	w := send(r, http.MethodPatch, "/users/u-7/status", `{"isActive":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-7", uc.statusID)
	assert.False(t, uc.statusFlag)

	w = send(r, http.MethodPatch, "/users/u-7/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	uc.err = usecase.ErrSelfDeactivation
	w = send(r, http.MethodPatch, "/users/me/status", `{"isActive":false}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
