// Package router assembles the Gin engine and the HTTP surface.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authhandler "quicktracks/internal/feature/auth/transport/handler"
	playlisthandler "quicktracks/internal/feature/playlists/transport/handler"
	"quicktracks/internal/platform/http/handler"
	"quicktracks/internal/platform/session"
)

// New builds the full HTTP handler: the Gin engine with every route, the
// session middleware, and the form method override wrapper.
func New(auth *authhandler.AuthHandler, playlists *playlisthandler.PlaylistHandler,
	sessions *session.Manager, templateGlob string) http.Handler {
	r := gin.Default()
	r.LoadHTMLGlob(templateGlob)
	r.Use(sessions.Middleware())

	// Public routes
	r.GET("/healthz", handler.Health)
	r.GET("/", playlists.Home)
	r.GET("/public-playlists", playlists.Public)

	users := r.Group("/users")
	{
		users.GET("/register", auth.ShowRegister)
		users.POST("/register", auth.Register)
		users.GET("/login", auth.ShowLogin)
		users.POST("/login", auth.Login)
		users.GET("/auth/github", auth.GitHubRedirect)
		users.GET("/auth/github/callback", auth.GitHubCallback)
		users.GET("/logout", auth.Logout)
	}

	// Authenticated routes
	private := r.Group("/playlists")
	private.Use(sessions.RequireAuth())
	{
		private.GET("/dashboard", playlists.Dashboard)
		private.GET("/add", playlists.ShowAdd)
		private.POST("/add", playlists.Add)
		private.GET("/edit/:id", playlists.ShowEdit)
		private.PUT("/edit/:id", playlists.Edit)
		private.DELETE("/delete/:id", playlists.Delete)
		private.GET("/add-song/:playlistId", playlists.ShowAddSong)
		private.POST("/add-song/:playlistId", playlists.AddSong)
		private.GET("/edit-song/:playlistId/:songIndex", playlists.ShowEditSong)
		private.POST("/edit-song/:playlistId/:songIndex", playlists.EditSong)
		private.DELETE("/delete-song/:playlistId/:songIndex", playlists.DeleteSong)
	}

	return MethodOverride(r)
}
