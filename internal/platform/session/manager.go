package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quicktracks/internal/feature/auth/domain/entity"
	"quicktracks/internal/feature/auth/usecase"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "quicktracks_session"

	// ContextUserID is the Gin context key holding the authenticated user id.
	ContextUserID = "userID"

	// contextSession is the Gin context key holding the loaded session.
	contextSession = "session"
)

// Manager issues, loads and destroys cookie sessions. A session may exist
// before login (it already carries flash notices); Login rotates the session
// id so an attacker cannot fixate a pre-auth cookie.
type Manager struct {
	repo   usecase.SessionRepository
	ttl    time.Duration
	secure bool
}

// NewManager creates a session manager backed by the given repository.
func NewManager(repo usecase.SessionRepository, ttl time.Duration, secure bool) *Manager {
	return &Manager{repo: repo, ttl: ttl, secure: secure}
}

// Middleware resolves the session cookie into a session entity and exposes
// it on the request context. Missing or expired sessions are not an error;
// the request simply proceeds unauthenticated.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := c.Cookie(CookieName); err == nil && id != "" {
			if s, err := m.repo.FindByID(c.Request.Context(), id); err == nil {
				c.Set(contextSession, s)
				if s.IsAuthenticated() {
					c.Set(ContextUserID, s.UserID)
				}
			}
		}
		c.Next()
	}
}

// RequireAuth redirects unauthenticated requests to the login page with a
// flash notice, mirroring the private-route guard of the HTTP surface.
func (m *Manager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			m.Flash(c, "error", "Please log in to view that resource")
			c.Redirect(http.StatusFound, "/users/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Current returns the session loaded for this request, if any.
func Current(c *gin.Context) (*entity.Session, bool) {
	v, ok := c.Get(contextSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*entity.Session)
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}

// UserID returns the authenticated user id for this request, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// Login binds the request to a user. The old session (if any) is destroyed
// and its pending flashes carried into a fresh one.
func (m *Manager) Login(c *gin.Context, userID uint) error {
	var flashes []entity.Flash
	if old, ok := Current(c); ok {
		flashes = old.Flashes
		if err := m.repo.Delete(c.Request.Context(), old.ID); err != nil {
			slog.Warn("failed to delete pre-auth session", "error", err)
		}
	}

	now := time.Now()
	s := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Flashes:   flashes,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.repo.Create(c.Request.Context(), s); err != nil {
		return err
	}
	m.setCookie(c, s.ID, int(m.ttl.Seconds()))
	c.Set(contextSession, s)
	c.Set(ContextUserID, userID)
	return nil
}

// Logout destroys the current session and clears the cookie. It is a
// side-effect-only operation and never fails in a user-visible way.
func (m *Manager) Logout(c *gin.Context) {
	if s, ok := Current(c); ok {
		if err := m.repo.Delete(c.Request.Context(), s.ID); err != nil {
			slog.Warn("failed to delete session on logout", "session_id", s.ID, "error", err)
		}
	}
	c.Set(contextSession, (*entity.Session)(nil))
	c.Set(ContextUserID, uint(0))
	m.setCookie(c, "", -1)
}

// Flash queues a one-time notice for the next rendered page, creating an
// anonymous session when the request has none yet.
func (m *Manager) Flash(c *gin.Context, kind, message string) {
	s, ok := Current(c)
	if !ok {
		now := time.Now()
		s = &entity.Session{
			ID:        uuid.NewString(),
			UserAgent: c.Request.UserAgent(),
			IPAddress: c.ClientIP(),
			CreatedAt: now,
			ExpiresAt: now.Add(m.ttl),
		}
		if err := m.repo.Create(c.Request.Context(), s); err != nil {
			slog.Warn("failed to create session for flash", "error", err)
			return
		}
		m.setCookie(c, s.ID, int(m.ttl.Seconds()))
		c.Set(contextSession, s)
	}
	s.AddFlash(kind, message)
	if err := m.repo.Save(c.Request.Context(), s); err != nil {
		slog.Warn("failed to persist flash", "session_id", s.ID, "error", err)
	}
}

// PopFlashes returns the pending notices for this request and clears them
// from the stored session.
func (m *Manager) PopFlashes(c *gin.Context) []entity.Flash {
	s, ok := Current(c)
	if !ok || len(s.Flashes) == 0 {
		return nil
	}
	flashes := s.PopFlashes()
	if err := m.repo.Save(c.Request.Context(), s); err != nil {
		slog.Warn("failed to clear flashes", "session_id", s.ID, "error", err)
	}
	return flashes
}

// PurgeExpired removes expired sessions from the backing store and returns
// the number removed. Redis expires its keys on its own; the MySQL store
// only shrinks when this runs, so the server calls it periodically.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx)
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", m.secure, true)
}
