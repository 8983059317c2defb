// Package oauth implements the GitHub OAuth2 flow: the authorization
// redirect, the code exchange, and the profile fetch.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"quicktracks/internal/feature/auth/usecase"
	"quicktracks/internal/platform/config"
	infrahttp "quicktracks/internal/platform/http"
	"quicktracks/internal/shared/ratelimiter"
)

// GitHubClient wraps an oauth2.Config for the GitHub provider and fetches
// the authenticated profile after the code exchange. Calls against the
// GitHub API share one rate limiter and a client with explicit timeouts.
type GitHubClient struct {
	conf    *oauth2.Config
	apiBase string
	timeout time.Duration
	limiter ratelimiter.RateLimiterInterface
}

// NewGitHubClient builds a GitHub OAuth client from the process configuration.
func NewGitHubClient(cfg *config.Config) *GitHubClient {
	return &GitHubClient{
		conf: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.GitHubCallbackURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBase: "https://api.github.com",
		timeout: 10 * time.Second,
		limiter: ratelimiter.NewRateLimiter(60, time.Minute),
	}
}

// AuthCodeURL returns the provider URL to redirect the browser to.
// The state token must be verified on the callback.
func (g *GitHubClient) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

// githubUser mirrors the fields of GET /user that the directory needs.
type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

// githubEmail mirrors one entry of GET /user/emails.
type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades the authorization code for a token and resolves the
// authenticated user's profile, including the addresses granted by the
// user:email scope.
func (g *GitHubClient) Exchange(ctx context.Context, code string) (usecase.GitHubProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// The oauth2 package picks its HTTP client from the context; the default
	// one has no timeout.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, infrahttp.NewHTTPClient(g.timeout))

	g.limiter.WaitIfNeeded()
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return usecase.GitHubProfile{}, fmt.Errorf("token exchange failed: %w", err)
	}

	client := g.conf.Client(ctx, token)

	var user githubUser
	if err := g.getJSON(ctx, client, "/user", &user); err != nil {
		return usecase.GitHubProfile{}, fmt.Errorf("failed to fetch github profile: %w", err)
	}

	profile := usecase.GitHubProfile{
		ID:    strconv.FormatInt(user.ID, 10),
		Login: user.Login,
	}
	if user.Email != "" {
		profile.Emails = append(profile.Emails, user.Email)
	}

	// The public profile email is often empty; the emails endpoint needs the
	// user:email scope. A failure here is not fatal, the account falls back
	// to the placeholder address.
	var emails []githubEmail
	if err := g.getJSON(ctx, client, "/user/emails", &emails); err == nil {
		for _, e := range emails {
			if e.Email != "" && e.Email != user.Email {
				profile.Emails = append(profile.Emails, e.Email)
			}
		}
	}

	return profile, nil
}

func (g *GitHubClient) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
