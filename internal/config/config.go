// Package config reads service settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	Hostaway Hostaway

	// FallbackDatasetPath overrides the embedded fallback reviews (.json or .xlsx).
	FallbackDatasetPath string

	CORSAllowedOrigins []string
}

type Hostaway struct {
	AccountID       string
	APIKey          string
	BaseURL         string
	ReviewsEndpoint string
	Timeout         time.Duration
	MaxRetries      uint64
}

// Configured reports whether credentials are present.
func (h Hostaway) Configured() bool {
	return h.AccountID != "" && h.APIKey != ""
}

// Load reads configuration from environment variables or falls back to defaults.
// Call godotenv.Load first if a .env file should be honored.
func Load() Config {
	return Config{
		Port:        envOr("PORT", "8080"),
		Environment: envOr("ENVIRONMENT", "local"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		Hostaway: Hostaway{
			AccountID:       os.Getenv("HOSTAWAY_ACCOUNT_ID"),
			APIKey:          os.Getenv("HOSTAWAY_API_KEY"),
			BaseURL:         envOr("HOSTAWAY_API_BASE", "https://api.hostaway.com"),
			ReviewsEndpoint: envOr("HOSTAWAY_REVIEWS_ENDPOINT", "/v1/reviews"),
			Timeout:         time.Duration(envInt("HOSTAWAY_TIMEOUT_SEC", 10)) * time.Second,
			MaxRetries:      uint64(envInt("HOSTAWAY_MAX_RETRIES", 0)),
		},
		FallbackDatasetPath: os.Getenv("FALLBACK_DATASET_PATH"),
		CORSAllowedOrigins:  envList("CORS_ALLOWED_ORIGINS"),
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envList(k string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(k), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
