package main

import (
	"context"
	"log"
	"net/http"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"quicktracks/internal/app/di"
	"quicktracks/internal/app/router"
	authadapters "quicktracks/internal/feature/auth/adapters"
	authhandler "quicktracks/internal/feature/auth/transport/handler"
	authusecase "quicktracks/internal/feature/auth/usecase"
	playlistadapters "quicktracks/internal/feature/playlists/adapters"
	playlisthandler "quicktracks/internal/feature/playlists/transport/handler"
	playlistusecase "quicktracks/internal/feature/playlists/usecase"
	"quicktracks/internal/platform/cache"
	"quicktracks/internal/platform/config"
	infradb "quicktracks/internal/platform/db"
	"quicktracks/internal/platform/oauth"
	infraredis "quicktracks/internal/platform/redis"
	"quicktracks/internal/platform/session"
)

func main() {
	cfg := config.Load()

	if cfg.SessionSecret == "" {
		log.Println("[WARN] SESSION_SECRET is not set. Set a strong secret in production.")
	}

	// db
	db := infradb.OpenDB(cfg)

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(cfg); err != nil {
		log.Println("[WARN] Redis unavailable. Sessions fall back to MySQL, public listing is uncached.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	userRepo := authadapters.NewUserMySQL(db)
	playlistRepo := playlistadapters.NewPlaylistMySQL(db)
	ownerRepo := playlistadapters.NewOwnerMySQL(db)
	sessionRepo := di.NewSessionRepository(rdb, db)

	// Public search results are cached briefly; writes invalidate.
	cachedPlaylistRepo := cache.NewCachingPlaylistRepository(rdb, 0, playlistRepo, "public")

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo)
	playlistUC := playlistusecase.NewPlaylistUsecase(cachedPlaylistRepo, ownerRepo)

	// Platform
	sessions := session.NewManager(sessionRepo, cfg.SessionTTL, false)

	// Redis sessions expire via key TTL; the MySQL fallback needs a sweep.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := sessions.PurgeExpired(context.Background()); err != nil {
				log.Println("[WARN] Failed to purge expired sessions:", err)
			} else if n > 0 {
				log.Println("[INFO] Purged expired sessions:", n)
			}
		}
	}()

	github := oauth.NewGitHubClient(cfg)
	state := oauth.NewStateSigner(cfg.SessionSecret)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, github, state, sessions)
	playlistH := playlisthandler.NewPlaylistHandler(playlistUC, sessions)

	h := router.New(authH, playlistH, sessions, "web/templates/*.tmpl")

	if err := http.ListenAndServe(":"+cfg.ServerPort, h); err != nil {
		log.Fatal(err)
	}
}
