package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quicktracks/internal/feature/playlists/domain/entity"
)

// PlaylistRepository abstracts the persistence layer for playlists and their
// embedded song sequences.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PlaylistRepository interface {
	// Create persists a new playlist with an empty song sequence and fills
	// in its generated id.
	Create(ctx context.Context, playlist *entity.Playlist) error

	// FindByID retrieves a playlist with its songs in position order.
	// It returns ErrPlaylistNotFound when the playlist does not exist.
	FindByID(ctx context.Context, id uint) (*entity.Playlist, error)

	// FindByOwner retrieves all playlists owned by the given user, in
	// storage order.
	FindByOwner(ctx context.Context, owner uint) ([]entity.Playlist, error)

	// Search retrieves all playlists, optionally filtered by a
	// case-insensitive literal substring match on the name. Pattern
	// metacharacters in the keyword must not be interpreted.
	Search(ctx context.Context, keyword string) ([]entity.Playlist, error)

	// UpdateMeta overwrites the name and description only; songs are untouched.
	// It returns ErrPlaylistNotFound when the playlist does not exist.
	UpdateMeta(ctx context.Context, id uint, name, description string) error

	// Delete removes the playlist and all embedded songs. Deleting an
	// unknown id is not an error at this layer.
	Delete(ctx context.Context, id uint) error

	// AppendSong adds a song at the end of the sequence.
	// It returns ErrPlaylistNotFound when the playlist does not exist.
	AppendSong(ctx context.Context, playlistID uint, song entity.Song) error

	// UpdateSongAt overwrites all fields of the song at the given position.
	// It returns ErrPlaylistNotFound or ErrSongNotFound accordingly.
	UpdateSongAt(ctx context.Context, playlistID uint, index int, song entity.Song) error

	// RemoveSongAt removes the song at the given position and shifts later
	// positions down by one. An out-of-bounds index is a no-op.
	// It returns ErrPlaylistNotFound when the playlist does not exist.
	RemoveSongAt(ctx context.Context, playlistID uint, index int) error
}

// OwnerDirectory resolves playlist owners to display usernames for the
// public listing.
type OwnerDirectory interface {
	UsernameByID(ctx context.Context, id uint) (string, error)
}

// PublicPlaylist is a playlist paired with its owner's display username.
type PublicPlaylist struct {
	entity.Playlist
	Owner string
}

// PlaylistUsecase implements the playlist catalog. Every private operation
// is scoped to the requester's own playlists; public reads are unscoped.
type PlaylistUsecase struct {
	playlists PlaylistRepository
	owners    OwnerDirectory
}

// NewPlaylistUsecase creates a new PlaylistUsecase instance.
func NewPlaylistUsecase(playlists PlaylistRepository, owners OwnerDirectory) *PlaylistUsecase {
	return &PlaylistUsecase{playlists: playlists, owners: owners}
}

// CreatePlaylist creates a playlist with an empty song sequence owned by
// the requester. The name is required; name and description are trimmed.
func (u *PlaylistUsecase) CreatePlaylist(ctx context.Context, owner uint, name, description string) (*entity.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	playlist := &entity.Playlist{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   owner,
	}
	if err := u.playlists.Create(ctx, playlist); err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	return playlist, nil
}

// ListOwned returns all playlists owned by the requester, in storage order.
func (u *PlaylistUsecase) ListOwned(ctx context.Context, owner uint) ([]entity.Playlist, error) {
	return u.playlists.FindByOwner(ctx, owner)
}

// ListPublic returns all playlists, filtered by keyword when supplied, with
// each owner resolved to a display username. This is a public read and has
// no ownership restriction.
func (u *PlaylistUsecase) ListPublic(ctx context.Context, keyword string) ([]PublicPlaylist, error) {
	playlists, err := u.playlists.Search(ctx, strings.TrimSpace(keyword))
	if err != nil {
		return nil, err
	}

	// Owner lookups are memoized; public listings repeat owners often.
	names := make(map[uint]string)
	out := make([]PublicPlaylist, 0, len(playlists))
	for _, p := range playlists {
		name, ok := names[p.CreatedBy]
		if !ok {
			resolved, err := u.owners.UsernameByID(ctx, p.CreatedBy)
			if err != nil {
				resolved = ""
			}
			names[p.CreatedBy] = resolved
			name = resolved
		}
		out = append(out, PublicPlaylist{Playlist: p, Owner: name})
	}
	return out, nil
}

// GetForEdit fetches one of the requester's playlists. A foreign playlist
// is reported as not found.
func (u *PlaylistUsecase) GetForEdit(ctx context.Context, owner, id uint) (*entity.Playlist, error) {
	return u.requireOwned(ctx, owner, id)
}

// UpdatePlaylist overwrites the name and description of one of the
// requester's playlists. Songs are untouched.
func (u *PlaylistUsecase) UpdatePlaylist(ctx context.Context, owner, id uint, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if _, err := u.requireOwned(ctx, owner, id); err != nil {
		return err
	}
	return u.playlists.UpdateMeta(ctx, id, name, strings.TrimSpace(description))
}

// DeletePlaylist removes one of the requester's playlists together with all
// embedded songs.
func (u *PlaylistUsecase) DeletePlaylist(ctx context.Context, owner, id uint) error {
	if _, err := u.requireOwned(ctx, owner, id); err != nil {
		return err
	}
	return u.playlists.Delete(ctx, id)
}

// AddSong appends a song to one of the requester's playlists.
func (u *PlaylistUsecase) AddSong(ctx context.Context, owner, playlistID uint, song entity.Song) error {
	song = song.Trimmed()
	if song.Title == "" || song.Artist == "" || song.Duration == "" {
		return ErrSongFieldsRequired
	}
	if _, err := u.requireOwned(ctx, owner, playlistID); err != nil {
		return err
	}
	return u.playlists.AppendSong(ctx, playlistID, song)
}

// GetSongAt returns the song at the given position of one of the
// requester's playlists.
func (u *PlaylistUsecase) GetSongAt(ctx context.Context, owner, playlistID uint, index int) (entity.Song, error) {
	playlist, err := u.requireOwned(ctx, owner, playlistID)
	if err != nil {
		return entity.Song{}, err
	}
	song, ok := playlist.SongAt(index)
	if !ok {
		return entity.Song{}, ErrSongNotFound
	}
	return song, nil
}

// UpdateSongAt overwrites all fields of the song at the given position.
func (u *PlaylistUsecase) UpdateSongAt(ctx context.Context, owner, playlistID uint, index int, song entity.Song) error {
	song = song.Trimmed()
	if song.Title == "" || song.Artist == "" || song.Duration == "" {
		return ErrSongFieldsRequired
	}
	if _, err := u.requireOwned(ctx, owner, playlistID); err != nil {
		return err
	}
	return u.playlists.UpdateSongAt(ctx, playlistID, index, song)
}

// RemoveSongAt removes the song at the given position, shifting later
// positions down by one. An out-of-bounds index is a silent no-op.
func (u *PlaylistUsecase) RemoveSongAt(ctx context.Context, owner, playlistID uint, index int) error {
	if _, err := u.requireOwned(ctx, owner, playlistID); err != nil {
		return err
	}
	return u.playlists.RemoveSongAt(ctx, playlistID, index)
}

// requireOwned fetches a playlist and verifies the requester owns it.
func (u *PlaylistUsecase) requireOwned(ctx context.Context, owner, id uint) (*entity.Playlist, error) {
	playlist, err := u.playlists.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist.CreatedBy != owner {
		return nil, ErrPlaylistNotFound
	}
	return playlist, nil
}

// IsNotFound reports whether err is one of the catalog's not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlaylistNotFound) || errors.Is(err, ErrSongNotFound)
}
