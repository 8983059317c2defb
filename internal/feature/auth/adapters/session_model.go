package adapters

import (
	"time"

	"quicktracks/internal/feature/auth/domain/entity"
)

// SessionModel is the GORM model for the sessions table.
type SessionModel struct {
	ID        string         `gorm:"primaryKey;size:64"`
	UserID    uint           `gorm:"index"`
	Flashes   []entity.Flash `gorm:"serializer:json"`
	UserAgent string         `gorm:"size:512"`
	IPAddress string         `gorm:"size:45"` // IPv6 max length
	CreatedAt time.Time      `gorm:"not null"`
	ExpiresAt time.Time      `gorm:"index;not null"`
}

// TableName returns the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		Flashes:   m.Flashes,
		UserAgent: m.UserAgent,
		IPAddress: m.IPAddress,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
	}
}

// SessionModelFromEntity converts a domain entity to a GORM model.
func SessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		Flashes:   s.Flashes,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
