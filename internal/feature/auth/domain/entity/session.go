package entity

import "time"

// Flash is a one-time notice attached to the next rendered page after a
// redirect, then discarded.
type Flash struct {
	Kind    string `json:"kind"` // "success" or "error"
	Message string `json:"message"`
}

// Session represents a browser session identified by an opaque cookie value.
// A session exists before login (it can already carry flash notices) and is
// bound to a user once authentication succeeds.
type Session struct {
	ID        string    // Opaque cookie value (UUID)
	UserID    uint      // 0 until the session is authenticated
	Flashes   []Flash   // Notices pending for the next rendered page
	UserAgent string    // Client's User-Agent header
	IPAddress string    // Client's IP address
	CreatedAt time.Time // Session creation time
	ExpiresAt time.Time // Session expiration time
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsAuthenticated returns true once the session has been bound to a user.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != 0
}

// AddFlash queues a notice for the next rendered page.
func (s *Session) AddFlash(kind, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
}

// PopFlashes returns the pending notices and clears them.
func (s *Session) PopFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}
