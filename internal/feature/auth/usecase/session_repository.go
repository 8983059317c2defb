package usecase

import (
	"context"

	"quicktracks/internal/feature/auth/domain/entity"
)

// SessionRepository abstracts the persistence layer for session entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SessionRepository interface {
	// Create persists a new session to the storage.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its ID (the cookie value).
	// Expired sessions are treated as absent.
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// Save overwrites an existing session (user binding, flash notices).
	Save(ctx context.Context, session *entity.Session) error

	// Delete removes a session from storage. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all expired sessions from storage.
	// Returns the number of deleted sessions.
	DeleteExpired(ctx context.Context) (int64, error)
}
