package jwtmw

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"insurance_backend/internal/platform/http/apierror"
	"insurance_backend/internal/shared/access"
)

const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// AccessTokenParser verifies bearer tokens.
type AccessTokenParser interface {
	ParseAccessToken(token string) (*Claims, error)
}

// AuthRequired returns a Gin middleware that validates the bearer access token
// and stores the caller identity on the context.
func AuthRequired(parser AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			apierror.Abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := parser.ParseAccessToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			apierror.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		role := claims.Role
		if role == "" {
			role = access.RoleCustomer
		}
		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, role)
		c.Next()
	}
}

// CurrentActor returns the authenticated caller. ok is false outside AuthRequired.
func CurrentActor(c *gin.Context) (access.Actor, bool) {
	id := c.GetString(ContextUserID)
	if id == "" {
		return access.Actor{}, false
	}
	role, _ := c.Get(ContextRole)
	r, _ := role.(access.Role)
	return access.Actor{UserID: id, Role: r}, true
}

// RequireRoles rejects callers whose role is not listed with 403.
// It must run after AuthRequired.
func RequireRoles(roles ...access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			apierror.Abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if !slices.Contains(roles, actor.Role) {
			apierror.Abort(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}
