// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"insurance_backend/internal/feature/policies/domain/entity"
	"insurance_backend/internal/feature/policies/usecase"
)

// CachingPolicyRepository decorates a PolicyRepository with a Redis read-through cache
// for single policy reads. Every write invalidates the affected keys.
type CachingPolicyRepository struct {
	inner     usecase.PolicyRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.PolicyRepository = (*CachingPolicyRepository)(nil)

// NewCachingPolicyRepository decorates inner with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "policies".
// A nil rdb bypasses the cache entirely.
func NewCachingPolicyRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PolicyRepository, namespace string) *CachingPolicyRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "policies"
	}
	return &CachingPolicyRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create is not cached; new policies are loaded on first read.
func (c *CachingPolicyRepository) Create(ctx context.Context, p *entity.Policy) error {
	return c.inner.Create(ctx, p)
}

// FindByID checks the cache first and falls back to the inner repository.
func (c *CachingPolicyRepository) FindByID(ctx context.Context, id string) (*entity.Policy, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var p entity.Policy
		if err := json.Unmarshal(b, &p); err == nil {
			return &p, nil
		}
		// corrupted entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	p, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return p, nil
}

// List always reads through to the inner repository.
func (c *CachingPolicyRepository) List(ctx context.Context, filter usecase.Filter) ([]entity.Policy, int64, error) {
	return c.inner.List(ctx, filter)
}

// Modify forwards to the inner repository and drops the cached copy once the write commits.
func (c *CachingPolicyRepository) Modify(ctx context.Context, id string, mutate func(*entity.Policy) error) (*entity.Policy, error) {
	p, err := c.inner.Modify(ctx, id, mutate)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return p, nil
}

// ExistsFrom always reads through to the inner repository.
func (c *CachingPolicyRepository) ExistsFrom(ctx context.Context, vehicleID string, effective time.Time) (bool, error) {
	return c.inner.ExistsFrom(ctx, vehicleID, effective)
}

// ActivateDue forwards to the inner repository and invalidates the activated policies.
func (c *CachingPolicyRepository) ActivateDue(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := c.inner.ActivateDue(ctx, now)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, ids...)
	return ids, nil
}

// ExpireLapsed forwards to the inner repository and invalidates the expired policies.
func (c *CachingPolicyRepository) ExpireLapsed(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := c.inner.ExpireLapsed(ctx, now)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, ids...)
	return ids, nil
}

// invalidate drops the cached copies of ids. Failures are logged, not returned.
func (c *CachingPolicyRepository) invalidate(ctx context.Context, ids ...string) {
	if c.rdb == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.cacheKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("failed to invalidate policy cache", "keys", len(keys), "error", err)
	}
}

func (c *CachingPolicyRepository) cacheKey(id string) string {
	return c.namespace + ":" + id
}
