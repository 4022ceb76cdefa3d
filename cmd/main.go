package main

import (
	"net/http"
	"os"
	"time"

	"licxo/internal/config"
	"licxo/internal/router"
	"licxo/internal/storage/postgres"
	"licxo/internal/storage/redis"
	"licxo/internal/upload"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	database, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize postgres storage")
	}
	defer database.Close()

	cache, err := redis.New(cfg.RedisAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer cache.Client.Close()

	var uploader upload.Uploader
	if cfg.CloudinaryURL != "" {
		cloudinaryUploader, err := upload.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure cloudinary")
		}
		uploader = cloudinaryUploader
	} else {
		log.Warn().Msg("CLOUDINARY_URL not set, listings will be created without images")
	}

	handler := router.New(database, cache, uploader, cfg.JWTSecret, cfg.AllowedOrigins)

	if cfg.KeepAliveURL != "" {
		go keepAlive(cfg.KeepAliveURL)
	}

	log.Info().Str("addr", cfg.Addr).Msg("Server starting")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

// keepAlive pings the deployment URL every three minutes so free-tier
// hosting does not idle the process out.
func keepAlive(url string) {
	ticker := time.NewTicker(3 * time.Minute)
	defer ticker.Stop()

	client := &http.Client{Timeout: 30 * time.Second}
	for range ticker.C {
		resp, err := client.Get(url)
		if err != nil {
			log.Warn().Err(err).Msg("Keep-alive ping failed")
			continue
		}
		resp.Body.Close()
		log.Debug().Int("status", resp.StatusCode).Msg("Keep-alive ping")
	}
}
