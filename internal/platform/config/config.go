// Package config loads the process configuration once at startup.
// Components receive it explicitly; nothing reads the environment after main.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server needs. It is constructed once in
// main and passed by reference into the platform and feature layers.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	ServerPort string

	// SessionSecret signs the OAuth state token and must be non-empty in
	// production.
	SessionSecret string
	SessionTTL    time.Duration

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	RunMigrations bool
}

// Load reads .env (when present) and the process environment into a Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	sessionTTL := 7 * 24 * time.Hour
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			sessionTTL = time.Duration(hours) * time.Hour
		}
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     os.Getenv("REDIS_PORT"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ServerPort: serverPort,

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    sessionTTL,

		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),

		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
}
