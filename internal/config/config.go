package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every process-wide setting. It is built once at startup
// and passed down explicitly; nothing reads the environment after load.
type Config struct {
	DatabaseURL    string
	RedisAddr      string
	Addr           string
	JWTSecret      string
	CloudinaryURL  string
	AllowedOrigins []string
	KeepAliveURL   string
	LogLevel       string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET env var is required")
	}

	return Config{
		DatabaseURL:    dsn,
		RedisAddr:      envOrDefault("REDIS_ADDR", "localhost:6379"),
		Addr:           fmt.Sprintf(":%s", envOrDefault("PORT", "4000")),
		JWTSecret:      secret,
		CloudinaryURL:  os.Getenv("CLOUDINARY_URL"),
		AllowedOrigins: parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		KeepAliveURL:   os.Getenv("KEEP_ALIVE_URL"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
