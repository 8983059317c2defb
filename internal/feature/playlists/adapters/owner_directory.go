package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	authentity "quicktracks/internal/feature/auth/domain/entity"
	"quicktracks/internal/feature/playlists/usecase"
)

// ownerMySQL resolves playlist owners to display usernames from the users
// table. The public listing is the only consumer.
type ownerMySQL struct {
	db *gorm.DB
}

// Compile-time check to ensure ownerMySQL implements OwnerDirectory.
var _ usecase.OwnerDirectory = (*ownerMySQL)(nil)

// NewOwnerMySQL creates a new instance of ownerMySQL.
func NewOwnerMySQL(db *gorm.DB) *ownerMySQL {
	return &ownerMySQL{db: db}
}

// UsernameByID returns the display username for a user id. An unknown owner
// resolves to an empty name rather than an error; the listing still renders.
func (r *ownerMySQL) UsernameByID(ctx context.Context, id uint) (string, error) {
	var user authentity.User
	if err := r.db.WithContext(ctx).
		Select("username").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.Username, nil
}
