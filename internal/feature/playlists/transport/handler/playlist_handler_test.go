package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authentity "quicktracks/internal/feature/auth/domain/entity"
	"quicktracks/internal/feature/playlists/domain/entity"
	"quicktracks/internal/feature/playlists/usecase"
	"quicktracks/internal/platform/session"
)

// mockPlaylistUsecase is a mock implementation of the PlaylistUsecase interface.
type mockPlaylistUsecase struct {
	CreatePlaylistFunc func(ctx context.Context, owner uint, name, description string) (*entity.Playlist, error)
	ListOwnedFunc      func(ctx context.Context, owner uint) ([]entity.Playlist, error)
	ListPublicFunc     func(ctx context.Context, keyword string) ([]usecase.PublicPlaylist, error)
	GetForEditFunc     func(ctx context.Context, owner, id uint) (*entity.Playlist, error)
	UpdatePlaylistFunc func(ctx context.Context, owner, id uint, name, description string) error
	DeletePlaylistFunc func(ctx context.Context, owner, id uint) error
	AddSongFunc        func(ctx context.Context, owner, playlistID uint, song entity.Song) error
	GetSongAtFunc      func(ctx context.Context, owner, playlistID uint, index int) (entity.Song, error)
	UpdateSongAtFunc   func(ctx context.Context, owner, playlistID uint, index int, song entity.Song) error
	RemoveSongAtFunc   func(ctx context.Context, owner, playlistID uint, index int) error
}

func (m *mockPlaylistUsecase) CreatePlaylist(ctx context.Context, owner uint, name, description string) (*entity.Playlist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, owner, name, description)
	}
	return &entity.Playlist{ID: 1, Name: name, CreatedBy: owner}, nil
}

func (m *mockPlaylistUsecase) ListOwned(ctx context.Context, owner uint) ([]entity.Playlist, error) {
	if m.ListOwnedFunc != nil {
		return m.ListOwnedFunc(ctx, owner)
	}
	return nil, nil
}

func (m *mockPlaylistUsecase) ListPublic(ctx context.Context, keyword string) ([]usecase.PublicPlaylist, error) {
	if m.ListPublicFunc != nil {
		return m.ListPublicFunc(ctx, keyword)
	}
	return nil, nil
}

func (m *mockPlaylistUsecase) GetForEdit(ctx context.Context, owner, id uint) (*entity.Playlist, error) {
	if m.GetForEditFunc != nil {
		return m.GetForEditFunc(ctx, owner, id)
	}
	return nil, usecase.ErrPlaylistNotFound
}

func (m *mockPlaylistUsecase) UpdatePlaylist(ctx context.Context, owner, id uint, name, description string) error {
	if m.UpdatePlaylistFunc != nil {
		return m.UpdatePlaylistFunc(ctx, owner, id, name, description)
	}
	return nil
}

func (m *mockPlaylistUsecase) DeletePlaylist(ctx context.Context, owner, id uint) error {
	if m.DeletePlaylistFunc != nil {
		return m.DeletePlaylistFunc(ctx, owner, id)
	}
	return nil
}

func (m *mockPlaylistUsecase) AddSong(ctx context.Context, owner, playlistID uint, song entity.Song) error {
	if m.AddSongFunc != nil {
		return m.AddSongFunc(ctx, owner, playlistID, song)
	}
	return nil
}

func (m *mockPlaylistUsecase) GetSongAt(ctx context.Context, owner, playlistID uint, index int) (entity.Song, error) {
	if m.GetSongAtFunc != nil {
		return m.GetSongAtFunc(ctx, owner, playlistID, index)
	}
	return entity.Song{}, usecase.ErrSongNotFound
}

func (m *mockPlaylistUsecase) UpdateSongAt(ctx context.Context, owner, playlistID uint, index int, song entity.Song) error {
	if m.UpdateSongAtFunc != nil {
		return m.UpdateSongAtFunc(ctx, owner, playlistID, index, song)
	}
	return nil
}

func (m *mockPlaylistUsecase) RemoveSongAt(ctx context.Context, owner, playlistID uint, index int) error {
	if m.RemoveSongAtFunc != nil {
		return m.RemoveSongAtFunc(ctx, owner, playlistID, index)
	}
	return nil
}

// testTemplates is a minimal template set covering the pages these handlers render.
const testTemplates = `
{{define "index.tmpl"}}home{{end}}
{{define "playlists.tmpl"}}public:{{range .Playlists}}[{{.Name}} by {{.Owner}}]{{end}}|kw={{.Keyword}}{{end}}
{{define "dashboard.tmpl"}}dashboard:{{range .Playlists}}[{{.Name}}]{{end}}{{end}}
{{define "add_playlist.tmpl"}}add{{end}}
{{define "edit_playlist.tmpl"}}edit:{{.Playlist.Name}}{{end}}
{{define "add_song.tmpl"}}addsong:{{.Playlist.Name}}{{end}}
{{define "edit_song.tmpl"}}editsong:{{.Song.Title}}{{end}}
`

// testEnv holds the wired router and its session store.
type testEnv struct {
	router   *gin.Engine
	sessions *session.SessionRedis
}

// setupPlaylistRouter wires the handler under test into a router with the
// session middleware and a miniredis session store. It returns the router and
// a cookie for an authenticated session owned by user 1.
func setupPlaylistRouter(t *testing.T, uc PlaylistUsecase) (*testEnv, *http.Cookie) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	repo := session.NewSessionRedis(client, "session")
	now := time.Now()
	require.NoError(t, repo.Create(context.Background(), &authentity.Session{
		ID:        "owner-session",
		UserID:    1,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}))

	sessions := session.NewManager(repo, time.Hour, false)
	h := NewPlaylistHandler(uc, sessions)

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(testTemplates)))
	r.Use(sessions.Middleware())
	r.GET("/", h.Home)
	r.GET("/public-playlists", h.Public)
	g := r.Group("/playlists", sessions.RequireAuth())
	{
		g.GET("/dashboard", h.Dashboard)
		g.GET("/add", h.ShowAdd)
		g.POST("/add", h.Add)
		g.GET("/edit/:id", h.ShowEdit)
		g.PUT("/edit/:id", h.Edit)
		g.DELETE("/delete/:id", h.Delete)
		g.GET("/add-song/:playlistId", h.ShowAddSong)
		g.POST("/add-song/:playlistId", h.AddSong)
		g.GET("/edit-song/:playlistId/:songIndex", h.ShowEditSong)
		g.POST("/edit-song/:playlistId/:songIndex", h.EditSong)
		g.DELETE("/delete-song/:playlistId/:songIndex", h.DeleteSong)
	}

	cookie := &http.Cookie{Name: session.CookieName, Value: "owner-session"}
	return &testEnv{router: r, sessions: repo}, cookie
}

// do performs a request with an optional session cookie and form body.
func do(env *testEnv, method, path string, cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// pendingFlashes reads the flash messages stored on the test session.
func pendingFlashes(t *testing.T, env *testEnv) []string {
	t.Helper()
	s, err := env.sessions.FindByID(context.Background(), "owner-session")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(s.Flashes))
	for _, f := range s.Flashes {
		out = append(out, f.Message)
	}
	return out
}

func TestPlaylistHandler_Public(t *testing.T) {
	t.Run("listing shows playlists with owners", func(t *testing.T) {
		uc := &mockPlaylistUsecase{
			ListPublicFunc: func(ctx context.Context, keyword string) ([]usecase.PublicPlaylist, error) {
				return []usecase.PublicPlaylist{
					{Playlist: entity.Playlist{ID: 1, Name: "Rock Classics"}, Owner: "alice"},
				}, nil
			},
		}
		env, _ := setupPlaylistRouter(t, uc)

		// No cookie: the public listing needs no authentication
		w := do(env, http.MethodGet, "/public-playlists", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "[Rock Classics by alice]")
	})

	t.Run("keyword query is forwarded and echoed", func(t *testing.T) {
		var gotKeyword string
		uc := &mockPlaylistUsecase{
			ListPublicFunc: func(ctx context.Context, keyword string) ([]usecase.PublicPlaylist, error) {
				gotKeyword = keyword
				return nil, nil
			},
		}
		env, _ := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodGet, "/public-playlists?keyword=rock", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rock", gotKeyword)
		assert.Contains(t, w.Body.String(), "kw=rock")
	})
}

func TestPlaylistHandler_RequireAuth(t *testing.T) {
	env, _ := setupPlaylistRouter(t, &mockPlaylistUsecase{})

	// No cookie: the guard redirects to the login page
	w := do(env, http.MethodGet, "/playlists/dashboard", nil, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/users/login", w.Header().Get("Location"))
}

func TestPlaylistHandler_Dashboard(t *testing.T) {
	uc := &mockPlaylistUsecase{
		ListOwnedFunc: func(ctx context.Context, owner uint) ([]entity.Playlist, error) {
			assert.Equal(t, uint(1), owner, "the session user scopes the listing")
			return []entity.Playlist{{ID: 1, Name: "Mine"}}, nil
		},
	}
	env, cookie := setupPlaylistRouter(t, uc)

	w := do(env, http.MethodGet, "/playlists/dashboard", cookie, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "[Mine]")
}

func TestPlaylistHandler_Add(t *testing.T) {
	t.Run("success redirects to the dashboard with a flash", func(t *testing.T) {
		uc := &mockPlaylistUsecase{
			CreatePlaylistFunc: func(ctx context.Context, owner uint, name, description string) (*entity.Playlist, error) {
				assert.Equal(t, uint(1), owner)
				assert.Equal(t, "Road Trip", name)
				return &entity.Playlist{ID: 5, Name: name, CreatedBy: owner}, nil
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodPost, "/playlists/add", cookie, url.Values{
			"name":        {"Road Trip"},
			"description": {"long drives"},
		})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/playlists/dashboard", w.Header().Get("Location"))
		assert.Contains(t, pendingFlashes(t, env), "Playlist added successfully")
	})

	t.Run("blank name flashes a notice", func(t *testing.T) {
		uc := &mockPlaylistUsecase{
			CreatePlaylistFunc: func(ctx context.Context, owner uint, name, description string) (*entity.Playlist, error) {
				return nil, usecase.ErrNameRequired
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodPost, "/playlists/add", cookie, url.Values{"name": {""}})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, pendingFlashes(t, env), "Please give the playlist a name")
	})
}

func TestPlaylistHandler_Edit(t *testing.T) {
	t.Run("edit page renders the playlist", func(t *testing.T) {
		uc := &mockPlaylistUsecase{
			GetForEditFunc: func(ctx context.Context, owner, id uint) (*entity.Playlist, error) {
				assert.Equal(t, uint(1), owner)
				assert.Equal(t, uint(5), id)
				return &entity.Playlist{ID: 5, Name: "Mix", CreatedBy: 1}, nil
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodGet, "/playlists/edit/5", cookie, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "edit:Mix")
	})

	t.Run("foreign playlist falls back to the dashboard", func(t *testing.T) {
		env, cookie := setupPlaylistRouter(t, &mockPlaylistUsecase{})

		w := do(env, http.MethodGet, "/playlists/edit/5", cookie, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/playlists/dashboard", w.Header().Get("Location"))
		assert.Contains(t, pendingFlashes(t, env), "Playlist not found")
	})

	t.Run("malformed id never reaches the usecase", func(t *testing.T) {
		uc := &mockPlaylistUsecase{
			GetForEditFunc: func(ctx context.Context, owner, id uint) (*entity.Playlist, error) {
				t.Error("usecase should not be called for a malformed id")
				return nil, usecase.ErrPlaylistNotFound
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodGet, "/playlists/edit/abc", cookie, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/playlists/dashboard", w.Header().Get("Location"))
	})

	t.Run("update success", func(t *testing.T) {
		var gotName string
		uc := &mockPlaylistUsecase{
			UpdatePlaylistFunc: func(ctx context.Context, owner, id uint, name, description string) error {
				gotName = name
				return nil
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodPut, "/playlists/edit/5", cookie, url.Values{
			"name": {"Renamed"},
		})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "Renamed", gotName)
		assert.Contains(t, pendingFlashes(t, env), "Playlist updated successfully")
	})
}

func TestPlaylistHandler_Delete(t *testing.T) {
	var deleted uint
	uc := &mockPlaylistUsecase{
		DeletePlaylistFunc: func(ctx context.Context, owner, id uint) error {
			deleted = id
			return nil
		},
	}
	env, cookie := setupPlaylistRouter(t, uc)

	w := do(env, http.MethodDelete, "/playlists/delete/5", cookie, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/playlists/dashboard", w.Header().Get("Location"))
	assert.Equal(t, uint(5), deleted)
	assert.Contains(t, pendingFlashes(t, env), "Playlist deleted successfully")
}

func TestPlaylistHandler_Songs(t *testing.T) {
	t.Run("add song redirects back to the playlist", func(t *testing.T) {
		var got entity.Song
		uc := &mockPlaylistUsecase{
			AddSongFunc: func(ctx context.Context, owner, playlistID uint, song entity.Song) error {
				got = song
				return nil
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodPost, "/playlists/add-song/5", cookie, url.Values{
			"title":    {"Hey Jude"},
			"artist":   {"The Beatles"},
			"album":    {"Past Masters"},
			"duration": {"7:04"},
		})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/playlists/edit/5", w.Header().Get("Location"))
		assert.Equal(t, "Hey Jude", got.Title)
		assert.Equal(t, "7:04", got.Duration)
		assert.Contains(t, pendingFlashes(t, env), "Song added to playlist successfully")
	})

	t.Run("missing fields flash back to the dashboard path", func(t *testing.T) {
		uc := &mockPlaylistUsecase{
			AddSongFunc: func(ctx context.Context, owner, playlistID uint, song entity.Song) error {
				return usecase.ErrSongFieldsRequired
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodPost, "/playlists/add-song/5", cookie, url.Values{"title": {""}})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, pendingFlashes(t, env), "Please fill in the song title, artist and duration")
	})

	t.Run("edit song form renders the current values", func(t *testing.T) {
		uc := &mockPlaylistUsecase{
			GetSongAtFunc: func(ctx context.Context, owner, playlistID uint, index int) (entity.Song, error) {
				assert.Equal(t, uint(5), playlistID)
				assert.Equal(t, 2, index)
				return entity.Song{Title: "Old Title", Artist: "A", Duration: "1:00"}, nil
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodGet, "/playlists/edit-song/5/2", cookie, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "editsong:Old Title")
	})

	t.Run("unknown position redirects to the playlist edit page", func(t *testing.T) {
		uc := &mockPlaylistUsecase{
			UpdateSongAtFunc: func(ctx context.Context, owner, playlistID uint, index int, song entity.Song) error {
				return usecase.ErrSongNotFound
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodPost, "/playlists/edit-song/5/9", cookie, url.Values{
			"title":    {"T"},
			"artist":   {"A"},
			"duration": {"1:00"},
		})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/playlists/edit/5", w.Header().Get("Location"))
		assert.Contains(t, pendingFlashes(t, env), "Song not found")
	})

	t.Run("negative position never reaches the usecase", func(t *testing.T) {
		uc := &mockPlaylistUsecase{
			RemoveSongAtFunc: func(ctx context.Context, owner, playlistID uint, index int) error {
				t.Error("usecase should not be called for a negative position")
				return nil
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodDelete, "/playlists/delete-song/5/-1", cookie, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/playlists/edit/5", w.Header().Get("Location"))
	})

	t.Run("delete song success", func(t *testing.T) {
		var gotIndex int
		uc := &mockPlaylistUsecase{
			RemoveSongAtFunc: func(ctx context.Context, owner, playlistID uint, index int) error {
				gotIndex = index
				return nil
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodDelete, "/playlists/delete-song/5/1", cookie, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, 1, gotIndex)
		assert.Contains(t, pendingFlashes(t, env), "Song removed from playlist successfully")
	})

	t.Run("storage failure flashes a generic notice", func(t *testing.T) {
		uc := &mockPlaylistUsecase{
			UpdateSongAtFunc: func(ctx context.Context, owner, playlistID uint, index int, song entity.Song) error {
				return errors.New("connection refused")
			},
		}
		env, cookie := setupPlaylistRouter(t, uc)

		w := do(env, http.MethodPost, "/playlists/edit-song/5/0", cookie, url.Values{
			"title":    {"T"},
			"artist":   {"A"},
			"duration": {"1:00"},
		})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, pendingFlashes(t, env), "Error updating song")
		assert.NotContains(t, w.Body.String(), "connection refused", "storage errors must not leak")
	})
}
