// Package ratelimiter throttles requests per client IP.
package ratelimiter

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"insurance_backend/internal/platform/http/apierror"
)

// NewStore returns a Redis-backed store when rdb is set, otherwise an in-process one.
func NewStore(rdb *redis.Client, prefix string) (limiter.Store, error) {
	if rdb == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: prefix}), nil
	}
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: prefix})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}

// Middleware limits requests per client IP using a formatted rate such as "20-M".
// Rejected requests get 429 with the standard error body.
func Middleware(store limiter.Store, formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}

	return ginlimiter.NewMiddleware(
		limiter.New(store, rate),
		ginlimiter.WithLimitReachedHandler(func(c *gin.Context) {
			slog.Warn("rate limit reached", "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
			apierror.Abort(c, http.StatusTooManyRequests, "Too many requests, please try again later")
		}),
		ginlimiter.WithErrorHandler(func(c *gin.Context, err error) {
			// fail open: a broken store must not lock users out
			slog.Error("rate limiter store failed", "error", err)
			c.Next()
		}),
	), nil
}
