// Package entity defines the domain entities for the auth feature.
package entity

import (
	"errors"
	"strings"
	"time"
)

// PlaceholderEmail returns the email stored for a GitHub account whose
// profile lists no address. The provider id is embedded so two such
// accounts never collide on the unique email column.
func PlaceholderEmail(githubID string) string {
	return "no-email+" + githubID + "@example.com"
}

// User represents a registered account. A user is created through exactly
// one of two paths: local registration (email + password hash) or a first
// GitHub login (provider id). The constructors below keep the two paths
// mutually exclusive.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Username is the display name shown next to public playlists.
	Username string `gorm:"size:255"`

	// Email is the login key for local accounts. Duplicates are rejected at
	// the application layer before insert; the unique index is a backstop.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the bcrypt hash for local accounts. It is empty for
	// GitHub-only accounts, which never authenticate with a password.
	PasswordHash string `gorm:"size:255"`

	// GitHubID links the account to the external identity provider. It is
	// nil for local accounts and unique when present.
	GitHubID *string `gorm:"uniqueIndex;size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocal reports whether the account can authenticate with email/password.
func (u *User) IsLocal() bool {
	return u.PasswordHash != ""
}

// NewLocalUser builds a user for the local registration path.
// The password must already be hashed.
func NewLocalUser(username, email, passwordHash string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("local user requires an email")
	}
	if passwordHash == "" {
		return nil, errors.New("local user requires a password hash")
	}
	return &User{
		Username:     strings.TrimSpace(username),
		Email:        email,
		PasswordHash: passwordHash,
	}, nil
}

// NewGitHubUser builds a user for the external provider path. When the
// GitHub profile lists no email, a per-account placeholder is stored
// instead.
func NewGitHubUser(githubID, username, email string) (*User, error) {
	if githubID == "" {
		return nil, errors.New("github user requires a provider id")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		email = PlaceholderEmail(githubID)
	}
	return &User{
		Username: strings.TrimSpace(username),
		Email:    email,
		GitHubID: &githubID,
	}, nil
}
