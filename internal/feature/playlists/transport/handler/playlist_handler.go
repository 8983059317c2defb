// Package handler provides the HTTP handlers for the playlists feature.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quicktracks/internal/feature/playlists/domain/entity"
	"quicktracks/internal/feature/playlists/usecase"
	"quicktracks/internal/platform/session"
)

// PlaylistUsecase defines the catalog operations the handler needs.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type PlaylistUsecase interface {
	CreatePlaylist(ctx context.Context, owner uint, name, description string) (*entity.Playlist, error)
	ListOwned(ctx context.Context, owner uint) ([]entity.Playlist, error)
	ListPublic(ctx context.Context, keyword string) ([]usecase.PublicPlaylist, error)
	GetForEdit(ctx context.Context, owner, id uint) (*entity.Playlist, error)
	UpdatePlaylist(ctx context.Context, owner, id uint, name, description string) error
	DeletePlaylist(ctx context.Context, owner, id uint) error
	AddSong(ctx context.Context, owner, playlistID uint, song entity.Song) error
	GetSongAt(ctx context.Context, owner, playlistID uint, index int) (entity.Song, error)
	UpdateSongAt(ctx context.Context, owner, playlistID uint, index int, song entity.Song) error
	RemoveSongAt(ctx context.Context, owner, playlistID uint, index int) error
}

// PlaylistHandler serves the dashboard, the playlist and song CRUD routes,
// and the public browse/search pages. Every write redirects with a flash
// notice; no failure is fatal to the request process.
type PlaylistHandler struct {
	playlists PlaylistUsecase
	sessions  *session.Manager
}

// NewPlaylistHandler creates a new PlaylistHandler instance.
func NewPlaylistHandler(playlists PlaylistUsecase, sessions *session.Manager) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, sessions: sessions}
}

// Home renders the splash page.
func (h *PlaylistHandler) Home(c *gin.Context) {
	h.render(c, "index.tmpl", gin.H{"Title": "QuickTracks Home"})
}

// Public lists all playlists, filtered by the keyword query when present.
// This route needs no authentication.
func (h *PlaylistHandler) Public(c *gin.Context) {
	keyword := c.Query("keyword")
	playlists, err := h.playlists.ListPublic(c.Request.Context(), keyword)
	if err != nil {
		slog.Error("public listing failed", "error", err)
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.render(c, "playlists.tmpl", gin.H{
		"Title":     "Public Playlists",
		"Playlists": playlists,
		"Keyword":   keyword,
	})
}

// Dashboard lists the requester's own playlists.
func (h *PlaylistHandler) Dashboard(c *gin.Context) {
	owner := h.owner(c)
	playlists, err := h.playlists.ListOwned(c.Request.Context(), owner)
	if err != nil {
		slog.Error("dashboard listing failed", "error", err, "owner", owner)
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.render(c, "dashboard.tmpl", gin.H{
		"Title":     "Dashboard",
		"Playlists": playlists,
	})
}

// ShowAdd renders the new-playlist form.
func (h *PlaylistHandler) ShowAdd(c *gin.Context) {
	h.render(c, "add_playlist.tmpl", gin.H{"Title": "Add Playlist"})
}

// Add creates a playlist from the submitted form.
func (h *PlaylistHandler) Add(c *gin.Context) {
	owner := h.owner(c)
	_, err := h.playlists.CreatePlaylist(c.Request.Context(), owner, c.PostForm("name"), c.PostForm("description"))
	if err != nil {
		h.fail(c, err, "Error adding playlist", "/playlists/dashboard")
		return
	}
	h.sessions.Flash(c, "success", "Playlist added successfully")
	c.Redirect(http.StatusFound, "/playlists/dashboard")
}

// ShowEdit renders the edit form for one of the requester's playlists,
// including its song sequence.
func (h *PlaylistHandler) ShowEdit(c *gin.Context) {
	owner := h.owner(c)
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	playlist, err := h.playlists.GetForEdit(c.Request.Context(), owner, id)
	if err != nil {
		h.fail(c, err, "Error loading playlist", "/playlists/dashboard")
		return
	}
	h.render(c, "edit_playlist.tmpl", gin.H{
		"Title":    "Edit Playlist",
		"Playlist": playlist,
	})
}

// Edit updates the name and description of one of the requester's playlists.
func (h *PlaylistHandler) Edit(c *gin.Context) {
	owner := h.owner(c)
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	if err := h.playlists.UpdatePlaylist(c.Request.Context(), owner, id, c.PostForm("name"), c.PostForm("description")); err != nil {
		h.fail(c, err, "Error updating playlist", "/playlists/dashboard")
		return
	}
	h.sessions.Flash(c, "success", "Playlist updated successfully")
	c.Redirect(http.StatusFound, "/playlists/dashboard")
}

// Delete removes one of the requester's playlists and all its songs.
func (h *PlaylistHandler) Delete(c *gin.Context) {
	owner := h.owner(c)
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	if err := h.playlists.DeletePlaylist(c.Request.Context(), owner, id); err != nil {
		h.fail(c, err, "Error deleting playlist", "/playlists/dashboard")
		return
	}
	h.sessions.Flash(c, "success", "Playlist deleted successfully")
	c.Redirect(http.StatusFound, "/playlists/dashboard")
}

// ShowAddSong renders the new-song form for a playlist.
func (h *PlaylistHandler) ShowAddSong(c *gin.Context) {
	owner := h.owner(c)
	id, ok := h.paramID(c, "playlistId")
	if !ok {
		return
	}
	playlist, err := h.playlists.GetForEdit(c.Request.Context(), owner, id)
	if err != nil {
		h.fail(c, err, "Error loading playlist", "/playlists/dashboard")
		return
	}
	h.render(c, "add_song.tmpl", gin.H{
		"Title":    "Add Song",
		"Playlist": playlist,
	})
}

// AddSong appends a song to one of the requester's playlists.
func (h *PlaylistHandler) AddSong(c *gin.Context) {
	owner := h.owner(c)
	id, ok := h.paramID(c, "playlistId")
	if !ok {
		return
	}
	song := entity.Song{
		Title:    c.PostForm("title"),
		Artist:   c.PostForm("artist"),
		Album:    c.PostForm("album"),
		Duration: c.PostForm("duration"),
	}
	if err := h.playlists.AddSong(c.Request.Context(), owner, id, song); err != nil {
		h.fail(c, err, "Error adding song to playlist", "/playlists/dashboard")
		return
	}
	h.sessions.Flash(c, "success", "Song added to playlist successfully")
	c.Redirect(http.StatusFound, fmt.Sprintf("/playlists/edit/%d", id))
}

// ShowEditSong renders the edit form for the song at a position.
func (h *PlaylistHandler) ShowEditSong(c *gin.Context) {
	owner := h.owner(c)
	id, index, ok := h.songParams(c)
	if !ok {
		return
	}
	song, err := h.playlists.GetSongAt(c.Request.Context(), owner, id, index)
	if err != nil {
		h.failSong(c, err, id)
		return
	}
	h.render(c, "edit_song.tmpl", gin.H{
		"Title":      "Edit Song",
		"PlaylistID": id,
		"SongIndex":  index,
		"Song":       song,
	})
}

// EditSong overwrites the song at a position with the submitted form.
func (h *PlaylistHandler) EditSong(c *gin.Context) {
	owner := h.owner(c)
	id, index, ok := h.songParams(c)
	if !ok {
		return
	}
	song := entity.Song{
		Title:    c.PostForm("title"),
		Artist:   c.PostForm("artist"),
		Album:    c.PostForm("album"),
		Duration: c.PostForm("duration"),
	}
	if err := h.playlists.UpdateSongAt(c.Request.Context(), owner, id, index, song); err != nil {
		h.failSong(c, err, id)
		return
	}
	h.sessions.Flash(c, "success", "Song updated successfully")
	c.Redirect(http.StatusFound, fmt.Sprintf("/playlists/edit/%d", id))
}

// DeleteSong removes the song at a position. An out-of-bounds position is a
// no-op and still redirects back to the playlist.
func (h *PlaylistHandler) DeleteSong(c *gin.Context) {
	owner := h.owner(c)
	id, index, ok := h.songParams(c)
	if !ok {
		return
	}
	if err := h.playlists.RemoveSongAt(c.Request.Context(), owner, id, index); err != nil {
		h.failSong(c, err, id)
		return
	}
	h.sessions.Flash(c, "success", "Song removed from playlist successfully")
	c.Redirect(http.StatusFound, fmt.Sprintf("/playlists/edit/%d", id))
}

// owner returns the authenticated requester. The auth middleware guards
// every private route, so a missing user id here is a programming error.
func (h *PlaylistHandler) owner(c *gin.Context) uint {
	id, _ := session.UserID(c)
	return id
}

// paramID parses a numeric path parameter, redirecting to the dashboard
// with a notice when it is malformed.
func (h *PlaylistHandler) paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		h.sessions.Flash(c, "error", "Playlist not found")
		c.Redirect(http.StatusFound, "/playlists/dashboard")
		return 0, false
	}
	return uint(id), true
}

// songParams parses the playlist id and song position path parameters.
func (h *PlaylistHandler) songParams(c *gin.Context) (uint, int, bool) {
	id, ok := h.paramID(c, "playlistId")
	if !ok {
		return 0, 0, false
	}
	index, err := strconv.Atoi(c.Param("songIndex"))
	if err != nil || index < 0 {
		h.sessions.Flash(c, "error", "Song not found")
		c.Redirect(http.StatusFound, fmt.Sprintf("/playlists/edit/%d", id))
		return 0, 0, false
	}
	return id, index, true
}

// fail maps a catalog error to a flash notice and a redirect to a safe page.
// Storage errors are logged server-side and never shown raw to the user.
func (h *PlaylistHandler) fail(c *gin.Context, err error, generic, redirect string) {
	switch {
	case errors.Is(err, usecase.ErrPlaylistNotFound):
		h.sessions.Flash(c, "error", "Playlist not found")
	case errors.Is(err, usecase.ErrNameRequired):
		h.sessions.Flash(c, "error", "Please give the playlist a name")
	case errors.Is(err, usecase.ErrSongFieldsRequired):
		h.sessions.Flash(c, "error", "Please fill in the song title, artist and duration")
	default:
		slog.Error("playlist operation failed", "error", err)
		h.sessions.Flash(c, "error", generic)
	}
	c.Redirect(http.StatusFound, redirect)
}

// failSong is like fail, but song-position errors redirect back to the
// parent playlist's edit page.
func (h *PlaylistHandler) failSong(c *gin.Context, err error, playlistID uint) {
	if errors.Is(err, usecase.ErrSongNotFound) {
		h.sessions.Flash(c, "error", "Song not found")
		c.Redirect(http.StatusFound, fmt.Sprintf("/playlists/edit/%d", playlistID))
		return
	}
	h.fail(c, err, "Error updating song", "/playlists/dashboard")
}

// render executes a template with the pending flash notices merged in.
func (h *PlaylistHandler) render(c *gin.Context, name string, data gin.H) {
	data["Flashes"] = h.sessions.PopFlashes(c)
	if id, ok := session.UserID(c); ok {
		data["UserID"] = id
	}
	c.HTML(http.StatusOK, name, data)
}
