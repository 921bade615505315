package di

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "insurance_backend/internal/feature/auth/adapters"
	"insurance_backend/internal/feature/auth/usecase"
	"insurance_backend/internal/platform/session"
)

// sessionKeyPrefix namespaces refresh sessions in Redis.
const sessionKeyPrefix = "refresh_session"

// NewSessionRepository picks where refresh-token sessions live. Redis is preferred so that
// expiry is handled by key TTLs; without it sessions go to the refresh_sessions table and the
// purge-sessions maintenance job cleans them up.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		slog.Debug("refresh sessions stored in Redis", "prefix", sessionKeyPrefix)
		return session.NewSessionRedis(rdb, sessionKeyPrefix)
	}
	slog.Debug("refresh sessions stored in the database")
	return authadapters.NewSessionGorm(db)
}
