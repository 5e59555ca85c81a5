// Package config loads service configuration from the environment, with an
// optional .env file for development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"chatdesk.org/internal/identity"
	"chatdesk.org/internal/obs"
	"chatdesk.org/internal/session"
)

// Config is the resolved service configuration.
type Config struct {
	Addr        string
	Environment string

	DatabaseURL string

	SessionSecret string
	SessionTTL    time.Duration

	IdentityURL    string
	IdentityAPIKey string
	// ServiceAccount is nil when the credential env variable is absent; the
	// admin identity routes degrade to 503 in that case, everything else
	// keeps working.
	ServiceAccount *identity.ServiceAccount

	BotEndpoint string
}

// Load reads configuration. A missing .env file is not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		obs.Log("info", "no .env file found, relying on environment variables", nil)
	}

	cfg := Config{
		Addr:           getEnv("CHATDESK_ADDR", ":8080"),
		Environment:    getEnv("CHATDESK_ENV", "development"),
		DatabaseURL:    getEnv("CHATDESK_DATABASE_URL", ""),
		SessionSecret:  getEnv("CHATDESK_SESSION_SECRET", ""),
		SessionTTL:     getEnvDuration("CHATDESK_SESSION_TTL", session.DefaultTTL),
		IdentityURL:    getEnv("CHATDESK_IDENTITY_URL", ""),
		IdentityAPIKey: getEnv("CHATDESK_IDENTITY_API_KEY", ""),
		BotEndpoint:    getEnv("CHATDESK_BOT_ENDPOINT", ""),
	}

	if raw := os.Getenv("CHATDESK_SERVICE_ACCOUNT_KEY"); raw != "" {
		sa, err := identity.DecodeServiceAccount(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.ServiceAccount = &sa
	}

	return cfg, nil
}

// Production reports whether the service runs with production hardening
// (secure cookies).
func (c Config) Production() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
