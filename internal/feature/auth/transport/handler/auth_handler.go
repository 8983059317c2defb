// Package handler provides the HTTP handlers for the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"quicktracks/internal/feature/auth/domain/entity"
	"quicktracks/internal/feature/auth/usecase"
	"quicktracks/internal/platform/session"
)

// AuthUsecase defines the user directory operations the handler needs.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type AuthUsecase interface {
	// Register validates the form and persists a new local user.
	Register(ctx context.Context, username, email, password, confirm string) error
	// Login authenticates a local user and returns the matched identity.
	Login(ctx context.Context, email, password string) (*entity.User, error)
	// LoginGitHub resolves a GitHub profile to a user, creating it on first login.
	LoginGitHub(ctx context.Context, profile usecase.GitHubProfile) (*entity.User, error)
}

// GitHubOAuth drives the external provider handshake.
type GitHubOAuth interface {
	// AuthCodeURL returns the provider URL to redirect the browser to.
	AuthCodeURL(state string) string
	// Exchange trades the callback code for the authenticated profile.
	Exchange(ctx context.Context, code string) (usecase.GitHubProfile, error)
}

// StateSigner issues and verifies the OAuth state parameter.
type StateSigner interface {
	Issue() (string, error)
	Verify(state string) error
}

// AuthHandler serves the registration, login, GitHub OAuth and logout routes.
// All responses are server-rendered pages or redirects with flash notices.
type AuthHandler struct {
	auth     AuthUsecase
	github   GitHubOAuth
	state    StateSigner
	sessions *session.Manager
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(auth AuthUsecase, github GitHubOAuth, state StateSigner, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{auth: auth, github: github, state: state, sessions: sessions}
}

// ShowRegister renders the registration form.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.render(c, "register.tmpl", gin.H{"Title": "Register"})
}

// Register handles the registration form post. Validation and conflict
// failures re-render the form with every violated rule and the submitted
// values preserved; success redirects to the login page.
func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")
	confirm := c.PostForm("password2")

	err := h.auth.Register(c.Request.Context(), username, email, password, confirm)
	if err != nil {
		var messages []string
		if ve, ok := usecase.IsValidationError(err); ok {
			messages = ve.Messages
		} else if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			messages = []string{"Email is already registered"}
		} else {
			slog.Error("registration failed", "error", err, "remote_addr", c.ClientIP())
			h.sessions.Flash(c, "error", "Something went wrong, please try again")
			c.Redirect(http.StatusFound, "/users/register")
			return
		}
		h.render(c, "register.tmpl", gin.H{
			"Title":    "Register",
			"Errors":   messages,
			"Username": username,
			"Email":    email,
		})
		return
	}

	slog.Info("user registered", "email", email, "remote_addr", c.ClientIP())
	h.sessions.Flash(c, "success", "You are now registered and can log in")
	c.Redirect(http.StatusFound, "/users/login")
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.render(c, "login.tmpl", gin.H{"Title": "Login"})
}

// Login handles the local login form post. Failures surface as one generic
// notice that does not reveal which of email or password was wrong.
func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.auth.Login(c.Request.Context(), email, password)
	if err != nil {
		slog.Warn("login failed", "email", email, "remote_addr", c.ClientIP())
		h.sessions.Flash(c, "error", "Invalid email or password")
		c.Redirect(http.StatusFound, "/users/login")
		return
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		slog.Error("failed to establish session", "error", err, "user_id", user.ID)
		h.sessions.Flash(c, "error", "Something went wrong, please try again")
		c.Redirect(http.StatusFound, "/users/login")
		return
	}

	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusFound, "/playlists/dashboard")
}

// GitHubRedirect sends the browser to the provider's authorization page
// with a signed state token.
func (h *AuthHandler) GitHubRedirect(c *gin.Context) {
	state, err := h.state.Issue()
	if err != nil {
		slog.Error("failed to issue oauth state", "error", err)
		h.sessions.Flash(c, "error", "GitHub login is unavailable right now")
		c.Redirect(http.StatusFound, "/users/login")
		return
	}
	c.Redirect(http.StatusFound, h.github.AuthCodeURL(state))
}

// GitHubCallback completes the provider handshake: state check, code
// exchange, then find-or-create of the user. Any failure degrades to the
// login page with a generic notice.
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	if err := h.state.Verify(c.Query("state")); err != nil {
		slog.Warn("oauth state verification failed", "remote_addr", c.ClientIP())
		h.sessions.Flash(c, "error", "GitHub login failed")
		c.Redirect(http.StatusFound, "/users/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		slog.Warn("oauth callback without code", "error_param", c.Query("error"))
		h.sessions.Flash(c, "error", "GitHub login failed")
		c.Redirect(http.StatusFound, "/users/login")
		return
	}

	profile, err := h.github.Exchange(c.Request.Context(), code)
	if err != nil {
		slog.Error("oauth exchange failed", "error", err)
		h.sessions.Flash(c, "error", "GitHub login failed")
		c.Redirect(http.StatusFound, "/users/login")
		return
	}

	user, err := h.auth.LoginGitHub(c.Request.Context(), profile)
	if err != nil {
		slog.Error("github login failed", "error", err)
		h.sessions.Flash(c, "error", "GitHub login failed")
		c.Redirect(http.StatusFound, "/users/login")
		return
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		slog.Error("failed to establish session", "error", err, "user_id", user.ID)
		h.sessions.Flash(c, "error", "Something went wrong, please try again")
		c.Redirect(http.StatusFound, "/users/login")
		return
	}

	slog.Info("github login successful", "user_id", user.ID)
	c.Redirect(http.StatusFound, "/playlists/dashboard")
}

// Logout ends the current session. It cannot fail in a user-visible way.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c)
	h.sessions.Flash(c, "success", "You are logged out")
	c.Redirect(http.StatusFound, "/users/login")
}

// render executes a template with the pending flash notices merged in.
func (h *AuthHandler) render(c *gin.Context, name string, data gin.H) {
	data["Flashes"] = h.sessions.PopFlashes(c)
	if id, ok := session.UserID(c); ok {
		data["UserID"] = id
	}
	c.HTML(http.StatusOK, name, data)
}
