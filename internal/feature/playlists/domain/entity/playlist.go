// Package entity defines the domain entities for the playlists feature.
package entity

import (
	"strings"
	"time"
)

// Song is one entry of a playlist's ordered sequence. A song has no
// identity of its own; it is addressed by its zero-based position within
// the parent playlist at the time of the request.
type Song struct {
	Title    string // required
	Artist   string // required
	Album    string // optional
	Duration string // required, free text such as "3:45"
}

// Trimmed returns a copy of the song with surrounding whitespace removed
// from every field.
func (s Song) Trimmed() Song {
	return Song{
		Title:    strings.TrimSpace(s.Title),
		Artist:   strings.TrimSpace(s.Artist),
		Album:    strings.TrimSpace(s.Album),
		Duration: strings.TrimSpace(s.Duration),
	}
}

// Playlist is a named, owner-scoped collection of songs. The owner
// reference is set at creation and never changes.
type Playlist struct {
	ID          uint
	Name        string
	Description string
	Songs       []Song // insertion order, may be empty
	CreatedBy   uint   // owning user id, immutable
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SongAt returns the song at the given zero-based position.
func (p *Playlist) SongAt(index int) (Song, bool) {
	if index < 0 || index >= len(p.Songs) {
		return Song{}, false
	}
	return p.Songs[index], true
}
