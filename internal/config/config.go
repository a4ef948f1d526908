package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	LogFile    string

	// RedisURL enables monitor event publishing when set.
	RedisURL string

	MaxUploadBytes int64
	UploadRate     int

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string

	PerQuestion  time.Duration
	TickInterval time.Duration
	Placeholder  string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
		LogFile:        getEnv("LOG_FILE", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		UploadRate:     getEnvInt("UPLOAD_RATE_PER_MINUTE", 30),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		PerQuestion:    time.Duration(getEnvInt("QUIZ_SECONDS_PER_QUESTION", 108)) * time.Second,
		TickInterval:   time.Duration(getEnvInt("QUIZ_TICK_MS", 1000)) * time.Millisecond,
		Placeholder:    getEnv("QUIZ_PLACEHOLDER", "-"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
