// Package usecase implements the business logic for the playlists feature.
package usecase

import "errors"

var (
	// ErrPlaylistNotFound is returned when a playlist cannot be found, or
	// when a private operation targets a playlist the requester does not
	// own. The two cases are deliberately indistinguishable so that private
	// routes leak nothing about foreign playlists.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrSongNotFound is returned when a song position is out of bounds.
	ErrSongNotFound = errors.New("song not found")

	// ErrNameRequired is returned when a playlist is created or renamed
	// without a name.
	ErrNameRequired = errors.New("playlist name is required")

	// ErrSongFieldsRequired is returned when a song is missing its title,
	// artist or duration.
	ErrSongFieldsRequired = errors.New("song title, artist and duration are required")
)
