// Package repository holds the persistence adapters.
package repository

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-content-consultant/internal/model"

	"github.com/go-redis/redis/v8"
)

// ExampleCacheRepository caches ranked retrieval results so repeated turns
// on the same topic skip embedding and search.
type ExampleCacheRepository interface {
	Get(ctx context.Context, query, platform string, topK int) ([]model.RetrievalExample, bool, error)
	Set(ctx context.Context, query, platform string, topK int, examples []model.RetrievalExample) error
	Invalidate(ctx context.Context) error
}

type redisExampleCacheRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

const exampleCachePrefix = "examples:cache:"

func NewExampleCacheRepository(redisClient *redis.Client, ttl time.Duration) ExampleCacheRepository {
	return &redisExampleCacheRepository{redisClient: redisClient, ttl: ttl}
}

func exampleCacheKey(query, platform string, topK int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%d", normalized, strings.ToLower(platform), topK)))
	return exampleCachePrefix + hex.EncodeToString(sum[:])
}

func (r *redisExampleCacheRepository) Get(ctx context.Context, query, platform string, topK int) ([]model.RetrievalExample, bool, error) {
	data, err := r.redisClient.Get(ctx, exampleCacheKey(query, platform, topK)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read example cache: %w", err)
	}
	var examples []model.RetrievalExample
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, false, fmt.Errorf("failed to decode example cache: %w", err)
	}
	return examples, true, nil
}

func (r *redisExampleCacheRepository) Set(ctx context.Context, query, platform string, topK int, examples []model.RetrievalExample) error {
	data, err := json.Marshal(examples)
	if err != nil {
		return fmt.Errorf("failed to encode example cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, exampleCacheKey(query, platform, topK), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write example cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached result. Called after new examples are
// indexed.
func (r *redisExampleCacheRepository) Invalidate(ctx context.Context) error {
	iter := r.redisClient.Scan(ctx, 0, exampleCachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan example cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.redisClient.Del(ctx, keys...).Err()
}
