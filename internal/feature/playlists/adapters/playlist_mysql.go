package adapters

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quicktracks/internal/feature/playlists/domain/entity"
	"quicktracks/internal/feature/playlists/usecase"
)

// playlistMySQL is a MySQL implementation of the PlaylistRepository interface.
// Songs live in a child table ordered by a position column, so concurrent
// song mutations touch individual rows instead of clobbering a serialized
// sequence; remove-and-renumber runs inside one transaction.
type playlistMySQL struct {
	db *gorm.DB
}

// Compile-time check to ensure playlistMySQL implements PlaylistRepository.
var _ usecase.PlaylistRepository = (*playlistMySQL)(nil)

// NewPlaylistMySQL creates a new instance of playlistMySQL.
func NewPlaylistMySQL(db *gorm.DB) *playlistMySQL {
	return &playlistMySQL{db: db}
}

// Create persists a new playlist with an empty song sequence.
func (r *playlistMySQL) Create(ctx context.Context, p *entity.Playlist) error {
	model := &PlaylistModel{
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID retrieves a playlist with its songs in position order.
func (r *playlistMySQL) FindByID(ctx context.Context, id uint) (*entity.Playlist, error) {
	var model PlaylistModel
	if err := r.db.WithContext(ctx).
		Preload("Songs", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPlaylistNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByOwner retrieves all playlists owned by the given user.
func (r *playlistMySQL) FindByOwner(ctx context.Context, owner uint) ([]entity.Playlist, error) {
	var models []PlaylistModel
	if err := r.db.WithContext(ctx).
		Preload("Songs", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("created_by = ?", owner).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

// Search retrieves all playlists, filtered by a case-insensitive literal
// substring on the name when a keyword is given. LIKE metacharacters in the
// keyword are escaped so they match literally.
func (r *playlistMySQL) Search(ctx context.Context, keyword string) ([]entity.Playlist, error) {
	q := r.db.WithContext(ctx).
		Preload("Songs", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	if keyword != "" {
		pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", pattern)
	}

	var models []PlaylistModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

// UpdateMeta overwrites the name and description only.
func (r *playlistMySQL) UpdateMeta(ctx context.Context, id uint, name, description string) error {
	result := r.db.WithContext(ctx).
		Model(&PlaylistModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrPlaylistNotFound
	}
	return nil
}

// Delete removes the playlist and its songs. Deleting an unknown id is not
// an error at this layer.
func (r *playlistMySQL) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&SongModel{}, "playlist_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&PlaylistModel{}, "id = ?", id).Error
	})
}

// AppendSong adds a song at the next free position.
func (r *playlistMySQL) AppendSong(ctx context.Context, playlistID uint, song entity.Song) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePlaylist(tx, playlistID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&SongModel{}).
			Where("playlist_id = ?", playlistID).
			Count(&count).Error; err != nil {
			return err
		}

		return tx.Create(&SongModel{
			PlaylistID: playlistID,
			Position:   int(count),
			Title:      song.Title,
			Artist:     song.Artist,
			Album:      song.Album,
			Duration:   song.Duration,
		}).Error
	})
}

// UpdateSongAt overwrites all fields of the song at the given position.
func (r *playlistMySQL) UpdateSongAt(ctx context.Context, playlistID uint, index int, song entity.Song) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePlaylist(tx, playlistID); err != nil {
			return err
		}

		result := tx.Model(&SongModel{}).
			Where("playlist_id = ? AND position = ?", playlistID, index).
			Updates(map[string]any{
				"title":    song.Title,
				"artist":   song.Artist,
				"album":    song.Album,
				"duration": song.Duration,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return usecase.ErrSongNotFound
		}
		return nil
	})
}

// RemoveSongAt removes the song at the given position and renumbers the
// rows after it. An out-of-bounds index deletes nothing and is a no-op.
func (r *playlistMySQL) RemoveSongAt(ctx context.Context, playlistID uint, index int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePlaylist(tx, playlistID); err != nil {
			return err
		}

		result := tx.Where("playlist_id = ? AND position = ?", playlistID, index).
			Delete(&SongModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		// Close the gap: every later song shifts down by one position.
		return tx.Model(&SongModel{}).
			Where("playlist_id = ? AND position > ?", playlistID, index).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
}

// requirePlaylist verifies the playlist row exists and locks it for the
// rest of the transaction, so concurrent song mutations on one playlist
// serialize instead of computing positions from the same snapshot. The
// SQLite driver drops the locking clause; SQLite writers are exclusive
// anyway.
func requirePlaylist(tx *gorm.DB, id uint) error {
	var exists PlaylistModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").First(&exists, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecase.ErrPlaylistNotFound
		}
		return err
	}
	return nil
}

func toEntities(models []PlaylistModel) []entity.Playlist {
	out := make([]entity.Playlist, 0, len(models))
	for i := range models {
		out = append(out, *models[i].ToEntity())
	}
	return out
}

// escapeLike makes a keyword safe for literal LIKE matching. The '!' escape
// character works identically on MySQL and SQLite.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "!", "!!")
	s = strings.ReplaceAll(s, "%", "!%")
	s = strings.ReplaceAll(s, "_", "!_")
	return s
}
