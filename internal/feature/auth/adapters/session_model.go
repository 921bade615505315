package adapters

import (
	"time"

	"insurance_backend/internal/feature/auth/domain/entity"
)

// SessionModel is a row of refresh_sessions. Its fields mirror entity.Session one to one so
// the two convert directly.
type SessionModel struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	UserID    string     `gorm:"type:uuid;not null;index:idx_refresh_sessions_user_revoked,priority:1"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"`
	CreatedAt time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	RevokedAt *time.Time `gorm:"index:idx_refresh_sessions_user_revoked,priority:2"`
}

func (SessionModel) TableName() string {
	return "refresh_sessions"
}

func (m SessionModel) toEntity() *entity.Session {
	s := entity.Session(m)
	return &s
}

func sessionModelOf(s *entity.Session) *SessionModel {
	m := SessionModel(*s)
	return &m
}
