// Package router mounts the HTTP routes of the service.
package router

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"insurance_backend/internal/app/di"
	"insurance_backend/internal/platform/config"
	"insurance_backend/internal/platform/http/apierror"
	"insurance_backend/internal/platform/http/middleware"
	jwtmw "insurance_backend/internal/platform/jwt"
	"insurance_backend/internal/platform/metrics"
	"insurance_backend/internal/shared/access"
)

// NewRouter builds the gin engine. authLimit throttles the public auth endpoints and may be nil.
func NewRouter(cfg config.AppSettings, h di.Handlers, tokens jwtmw.AccessTokenParser,
	authLimit gin.HandlerFunc, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(apierror.Recovery(), middleware.RequestLogger(logger), metrics.Middleware(), cors.New(corsConfig(cfg)))
	r.NoRoute(apierror.NoRoute)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(cfg.APIPrefix)

	// public
	api.GET("", h.Health.Root)
	api.GET("/health", h.Health.Check)
	api.HEAD("/health", h.Health.Check)
	api.OPTIONS("/health", h.Health.Check)

	public := api.Group("/auth")
	if authLimit != nil {
		public.Use(authLimit)
	}
	{
		public.POST("/register", h.Auth.Register)
		public.POST("/login", h.Auth.Login)
		public.POST("/refresh", h.Auth.Refresh)
		public.POST("/logout", h.Auth.Logout)
		public.POST("/forgot-password", h.Auth.ForgotPassword)
		public.POST("/reset-password", h.Auth.ResetPassword)
		public.POST("/verify-email", h.Auth.VerifyEmail)
	}

	// authenticated
	auth := api.Group("")
	auth.Use(jwtmw.AuthRequired(tokens))
	staff := jwtmw.RequireRoles(access.RoleAgent, access.RoleAdmin)
	admin := jwtmw.RequireRoles(access.RoleAdmin)

	auth.GET("/auth/me", h.Auth.Me)

	users := auth.Group("/users")
	{
		users.GET("/me", h.Users.GetProfile)
		users.PATCH("/me", h.Users.UpdateProfile)
		users.GET("", staff, h.Users.List)
		users.PATCH("/:id/status", admin, h.Users.SetStatus)
	}

	vehicles := auth.Group("/vehicles")
	{
		vehicles.POST("", h.Vehicles.Create)
		vehicles.GET("", h.Vehicles.List)
		vehicles.GET("/:id", h.Vehicles.Get)
		vehicles.PATCH("/:id", h.Vehicles.Update)
		vehicles.DELETE("/:id", h.Vehicles.Delete)
	}

	quotes := auth.Group("/quotes")
	{
		quotes.POST("", h.Quotes.Create)
		quotes.GET("", h.Quotes.List)
		quotes.GET("/:id", h.Quotes.Get)
		quotes.POST("/:id/accept", h.Quotes.Accept)
		quotes.POST("/:id/decline", h.Quotes.Decline)
	}

	policies := auth.Group("/policies")
	{
		policies.GET("", h.Policies.List)
		policies.GET("/:id", h.Policies.Get)
		policies.GET("/:id/status", h.Policies.Status)
		policies.POST("/:id/cancel", h.Policies.Cancel)
		policies.POST("/:id/renew", h.Policies.Renew)
	}

	claims := auth.Group("/claims")
	{
		claims.POST("", h.Claims.Submit)
		claims.GET("", h.Claims.List)
		claims.GET("/:id", h.Claims.Get)
		claims.POST("/:id/review", staff, h.Claims.Review)
		claims.POST("/:id/investigate", staff, h.Claims.Investigate)
		claims.POST("/:id/approve", staff, h.Claims.Approve)
		claims.POST("/:id/deny", staff, h.Claims.Deny)
		claims.POST("/:id/settle", staff, h.Claims.Settle)
		claims.POST("/:id/close", staff, h.Claims.Close)
	}

	payments := auth.Group("/payments")
	{
		payments.POST("", h.Payments.Create)
		payments.GET("", h.Payments.List)
		payments.GET("/:id", h.Payments.Get)
		payments.POST("/:id/process", staff, h.Payments.Process)
		payments.POST("/:id/complete", staff, h.Payments.Complete)
		payments.POST("/:id/fail", staff, h.Payments.Fail)
		payments.POST("/:id/refund", staff, h.Payments.Refund)
		payments.POST("/:id/cancel", h.Payments.Cancel)
	}

	return r
}

func corsConfig(cfg config.AppSettings) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
