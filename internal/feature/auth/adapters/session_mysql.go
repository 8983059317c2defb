package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"quicktracks/internal/feature/auth/domain/entity"
	"quicktracks/internal/feature/auth/usecase"
)

// sessionMySQL is a MySQL implementation of the SessionRepository interface.
// It serves as the fallback session store when Redis is unavailable.
type sessionMySQL struct {
	db *gorm.DB
}

// Compile-time check to ensure sessionMySQL implements SessionRepository.
var _ usecase.SessionRepository = (*sessionMySQL)(nil)

// NewSessionMySQL creates a new instance of sessionMySQL.
func NewSessionMySQL(db *gorm.DB) *sessionMySQL {
	return &sessionMySQL{db: db}
}

// Create persists a new session to the database.
func (r *sessionMySQL) Create(ctx context.Context, session *entity.Session) error {
	model := SessionModelFromEntity(session)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID retrieves a session by its cookie value.
// Expired sessions are reported as not found.
func (r *sessionMySQL) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var model SessionModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, time.Now()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Save overwrites an existing session.
func (r *sessionMySQL) Save(ctx context.Context, session *entity.Session) error {
	model := SessionModelFromEntity(session)
	result := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("id = ?", model.ID).
		Select("UserID", "Flashes").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (r *sessionMySQL) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&SessionModel{}, "id = ?", id).Error
}

// DeleteExpired removes all expired sessions from storage.
func (r *sessionMySQL) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&SessionModel{})
	return result.RowsAffected, result.Error
}
