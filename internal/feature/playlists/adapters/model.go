// Package adapters provides repository implementations for the playlists feature.
package adapters

import (
	"time"

	"quicktracks/internal/feature/playlists/domain/entity"
)

// PlaylistModel is the GORM model for the playlists table.
type PlaylistModel struct {
	ID          uint        `gorm:"primaryKey"`
	Name        string      `gorm:"size:255;not null"`
	Description string      `gorm:"size:1024"`
	CreatedBy   uint        `gorm:"index;not null"`
	Songs       []SongModel `gorm:"foreignKey:PlaylistID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM.
func (PlaylistModel) TableName() string {
	return "playlists"
}

// SongModel is one row of a playlist's embedded song sequence. The position
// column carries the zero-based insertion order; removal renumbers the rows
// after the gap.
type SongModel struct {
	ID         uint   `gorm:"primaryKey"`
	PlaylistID uint   `gorm:"index:idx_songs_playlist_position;not null"`
	Position   int    `gorm:"index:idx_songs_playlist_position;not null"`
	Title      string `gorm:"size:255;not null"`
	Artist     string `gorm:"size:255;not null"`
	Album      string `gorm:"size:255"`
	Duration   string `gorm:"size:32;not null"`
}

// TableName returns the table name for GORM.
func (SongModel) TableName() string {
	return "songs"
}

// ToEntity converts the GORM model to a domain entity. Songs must already
// be loaded in position order.
func (m *PlaylistModel) ToEntity() *entity.Playlist {
	songs := make([]entity.Song, 0, len(m.Songs))
	for _, s := range m.Songs {
		songs = append(songs, entity.Song{
			Title:    s.Title,
			Artist:   s.Artist,
			Album:    s.Album,
			Duration: s.Duration,
		})
	}
	return &entity.Playlist{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Songs:       songs,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
