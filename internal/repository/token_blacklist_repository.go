package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenBlacklistRepository remembers revoked tokens until they expire.
type TokenBlacklistRepository interface {
	Revoke(ctx context.Context, tokenString string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenString string) (bool, error)
}

type redisTokenBlacklistRepository struct {
	redisClient *redis.Client
}

func NewTokenBlacklistRepository(redisClient *redis.Client) TokenBlacklistRepository {
	return &redisTokenBlacklistRepository{redisClient: redisClient}
}

func blacklistKey(tokenString string) string {
	return "blacklist:" + tokenString
}

func (r *redisTokenBlacklistRepository) Revoke(ctx context.Context, tokenString string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.redisClient.Set(ctx, blacklistKey(tokenString), "true", ttl).Err()
}

func (r *redisTokenBlacklistRepository) IsRevoked(ctx context.Context, tokenString string) (bool, error) {
	n, err := r.redisClient.Exists(ctx, blacklistKey(tokenString)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
