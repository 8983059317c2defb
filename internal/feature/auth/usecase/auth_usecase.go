package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"quicktracks/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength is the minimum accepted password length.
	minPasswordLength = 6
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user to the storage.
	// It returns ErrEmailAlreadyExists when the email is already taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail retrieves a user matching the specified email address.
	// It returns ErrUserNotFound when the user does not exist.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves a user matching the specified ID.
	// It returns ErrUserNotFound when the user does not exist.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByGitHubID retrieves a user by external provider id.
	// It returns ErrUserNotFound when the user does not exist.
	FindByGitHubID(ctx context.Context, githubID string) (*entity.User, error)
}

// GitHubProfile is the subset of the provider profile the directory needs.
type GitHubProfile struct {
	ID     string
	Login  string
	Emails []string
}

// AuthUsecase implements the user directory: registration, local login and
// the find-or-create path for GitHub logins.
type AuthUsecase struct {
	users UserRepository
}

// NewAuthUsecase creates a new AuthUsecase instance.
func NewAuthUsecase(users UserRepository) *AuthUsecase {
	return &AuthUsecase{users: users}
}

// Register validates the submitted form and persists a new local user with a
// bcrypt-hashed password (cost factor 10). Every violated rule is collected
// into a single ValidationError rather than failing on the first.
func (u *AuthUsecase) Register(ctx context.Context, username, email, password, confirm string) error {
	var messages []string
	if username == "" || email == "" || password == "" || confirm == "" {
		messages = append(messages, "Please fill in all fields")
	}
	if password != confirm {
		messages = append(messages, "Passwords do not match")
	}
	if len(password) < minPasswordLength {
		messages = append(messages, fmt.Sprintf("Password should be at least %d characters", minPasswordLength))
	}
	if len(messages) > 0 {
		return &ValidationError{Messages: messages}
	}

	// Duplicate emails are rejected here, before insert; the storage-level
	// unique index is only a backstop.
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("failed to check existing email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := entity.NewLocalUser(username, email, string(hashed))
	if err != nil {
		return err
	}
	return u.users.Create(ctx, user)
}

// Login authenticates a local user and returns the matched identity.
// To mitigate timing attacks, a bcrypt comparison runs even when the email
// is unknown.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, email)

	// Dummy hash so bcrypt.CompareHashAndPassword always runs.
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if err == nil && user.IsLocal() {
		passwordHash = user.PasswordHash
	}

	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// Unknown email, provider-only account or password mismatch all surface
	// as the same generic error.
	if err != nil || !user.IsLocal() || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// LoginGitHub resolves a GitHub profile to a user, creating the account on
// first login. The username comes from the profile login and the email from
// the first listed address, falling back to a placeholder when absent.
func (u *AuthUsecase) LoginGitHub(ctx context.Context, profile GitHubProfile) (*entity.User, error) {
	if profile.ID == "" {
		return nil, errors.New("github profile has no id")
	}

	user, err := u.users.FindByGitHubID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up github user: %w", err)
	}

	email := ""
	if len(profile.Emails) > 0 {
		email = profile.Emails[0]
	}
	user, err = entity.NewGitHubUser(profile.ID, profile.Login, email)
	if err != nil {
		return nil, err
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create github user: %w", err)
	}
	return user, nil
}

// FindByID returns the user with the given id.
func (u *AuthUsecase) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}
