package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"licxo/internal/models"
	"licxo/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	listingsTTL = 5 * time.Minute
	otpTTL      = 5 * time.Minute
)

type RedisCache struct {
	Client *redis.Client
}

func New(addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}

	return &RedisCache{Client: client}, nil
}

func listingsKey(phone string) string {
	return fmt.Sprintf(`listings:phone:%s`, phone)
}

func otpKey(phone string) string {
	return fmt.Sprintf(`otp:%s`, phone)
}

func (r *RedisCache) PutListingsByPhone(ctx context.Context, phone string, listings []models.Listing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal listings for cache")
		return err
	}

	key := listingsKey(phone)
	if err := r.Client.Set(ctx, key, data, listingsTTL).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to set listings in cache")
		return err
	}

	log.Debug().Str("key", key).Msg("Cached listings")
	return nil
}

func (r *RedisCache) GetListingsByPhone(ctx context.Context, phone string) ([]models.Listing, error) {
	key := listingsKey(phone)

	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to get listings from cache")
		return nil, err
	}

	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to unmarshal cached listings")
		return nil, err
	}

	log.Debug().Str("key", key).Msg("Cache hit for listings")
	return listings, nil
}

func (r *RedisCache) DeleteListingsByPhone(ctx context.Context, phone string) {
	key := listingsKey(phone)

	if err := r.Client.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to invalidate listings cache")
	}
}

// PutOTP stores the bcrypt hash of a one-time code; the code itself is
// never persisted. Entries expire on their own.
func (r *RedisCache) PutOTP(ctx context.Context, phone, codeHash string) error {
	if err := r.Client.Set(ctx, otpKey(phone), codeHash, otpTTL).Err(); err != nil {
		log.Error().Err(err).Msg("Failed to store OTP hash")
		return err
	}
	return nil
}

func (r *RedisCache) GetOTP(ctx context.Context, phone string) (string, error) {
	hash, err := r.Client.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return ``, storage.ErrOTPNotFound
	}
	return hash, err
}

func (r *RedisCache) DeleteOTP(ctx context.Context, phone string) {
	if err := r.Client.Del(ctx, otpKey(phone)).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to delete OTP hash")
	}
}
