// Package config loads and validates application configuration from environment variables.
// A .env file in the working directory, when present, is loaded first; real
// environment variables always win over values from the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// It is built once by Load and passed explicitly to every constructor;
// no other package reads the environment.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string

	// MaxBodyBytes caps request body sizes. Defaults to 20 KiB.
	MaxBodyBytes int64

	// DatabaseURL is the Postgres connection string. Optional: when empty the
	// saved-itinerary endpoints are not mounted.
	DatabaseURL string

	// JWTSecret verifies HS256 access tokens. Required when DatabaseURL is set.
	JWTSecret string

	Gemini  GeminiConfig
	Weather WeatherConfig
	Images  ImageConfig

	// MaxConcurrentLookups bounds the enrichment fan-out. Defaults to 16.
	MaxConcurrentLookups int

	// EnrichmentBudget caps the whole enrichment of one plan. Lookups still
	// pending when it runs out are reported as unavailable. Defaults to 30s.
	EnrichmentBudget time.Duration
}

// GeminiConfig configures the generative model used for plan acquisition.
type GeminiConfig struct {
	APIKey  string        // GEMINI_API_KEY, required
	Model   string        // GEMINI_MODEL, default "gemini-2.5-pro"
	Timeout time.Duration // GEMINI_TIMEOUT, default 120s
	BaseURL string        // GEMINI_BASE_URL, empty uses the SDK default endpoint
}

// WeatherConfig configures the weatherapi.com forecast client.
// An empty APIKey is allowed: every weather lookup then degrades to a placeholder.
type WeatherConfig struct {
	APIKey       string
	BaseURL      string
	ForecastDays int
	Timeout      time.Duration
	CacheTTL     time.Duration
	RPS          float64
	Burst        int
}

// ImageConfig configures the Unsplash photo search client.
// An empty AccessKey is allowed: every image lookup then degrades to a placeholder.
type ImageConfig struct {
	AccessKey string
	BaseURL   string
	Timeout   time.Duration
}

// PersistenceEnabled reports whether a database is configured.
func (c Config) PersistenceEnabled() bool {
	return c.DatabaseURL != ""
}

// Load reads configuration from the environment and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg, err := read()
	if err != nil {
		return Config{}, err
	}

	var missing []string
	if cfg.Gemini.APIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if cfg.PersistenceEnabled() && cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// LoadDatabase is Load for commands that only talk to the database, such as
// migrations. Only DATABASE_URL is required.
func LoadDatabase() (Config, error) {
	cfg, err := read()
	if err != nil {
		return Config{}, err
	}
	if !cfg.PersistenceEnabled() {
		return Config{}, errors.New("required environment variables not set: DATABASE_URL")
	}
	return cfg, nil
}

func read() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: read .env: %w", err)
	}

	return Config{
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		CORSOrigins:          splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MaxBodyBytes:         int64(getInt("MAX_BODY_BYTES", 20<<10)),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		MaxConcurrentLookups: getInt("MAX_CONCURRENT_LOOKUPS", 16),
		EnrichmentBudget:     getDuration("ENRICHMENT_TIMEOUT", 30*time.Second),
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
			Timeout: getDuration("GEMINI_TIMEOUT", 120*time.Second),
			BaseURL: os.Getenv("GEMINI_BASE_URL"),
		},
		Weather: WeatherConfig{
			APIKey:       os.Getenv("WEATHERAPI_KEY"),
			BaseURL:      getEnv("WEATHERAPI_BASE_URL", "https://api.weatherapi.com/v1"),
			ForecastDays: getInt("WEATHER_FORECAST_DAYS", 10),
			Timeout:      getDuration("WEATHER_TIMEOUT", 10*time.Second),
			CacheTTL:     getDuration("WEATHER_CACHE_TTL", 30*time.Minute),
			RPS:          getFloat("WEATHER_RPS", 5),
			Burst:        getInt("WEATHER_BURST", 10),
		},
		Images: ImageConfig{
			AccessKey: os.Getenv("UNSPLASH_API_KEY"),
			BaseURL:   getEnv("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
			Timeout:   getDuration("UNSPLASH_TIMEOUT", 8*time.Second),
		},
	}, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt is getEnv for positive integers; unparsable or non-positive values use fallback.
func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f > 0 {
		return f
	}
	return fallback
}

// getDuration accepts time.ParseDuration syntax ("8s", "2m").
func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
