// Package handler serves the platform-level endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness together with process uptime.
type HealthHandler struct {
	env     string
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler. The uptime is measured from this call.
func NewHealthHandler(env string) *HealthHandler {
	return &HealthHandler{env: env, started: time.Now(), now: time.Now}
}

// Root answers the bare API prefix.
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Hello World!")
}

// Check handles the health endpoint for every method and disables caching.
func (h *HealthHandler) Check(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		now := h.now()
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"timestamp":   now.UTC(),
			"uptime":      now.Sub(h.started).Seconds(),
			"environment": h.env,
		})
	}
}
