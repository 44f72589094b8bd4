package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"meetsync/core/logger"
)

// Service is a TTL-bounded advisory cache over Redis. Entries are copies of
// remote objects and are never treated as source of truth: a miss or an
// expired entry always means "refetch".
type Service struct {
	rdb *redis.Client
}

func NewService(rdb *redis.Client) *Service {
	return &Service{rdb: rdb}
}

// Key builds the canonical cache key for a remote object copy
func Key(grantID, objectType, objectID string) string {
	return fmt.Sprintf("cache:%s:%s:%s", grantID, objectType, objectID)
}

// Set upserts a JSON-encoded value with the given TTL
func (s *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Error("Cache:Set:Error", "key", key, "error", err)
		return err
	}
	return nil
}

// Get decodes the cached value into dest. Returns false on miss, expiry or
// decode failure; cache errors are absorbed since the cache is advisory.
func (s *Service) Get(ctx context.Context, key string, dest any) bool {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Error("Cache:Get:Error", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn("Cache:Get:BadEntry", "key", key, "error", err)
		return false
	}
	return true
}

// Delete removes a key, used to invalidate after remote mutations
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		logger.Error("Cache:Delete:Error", "key", key, "error", err)
		return err
	}
	return nil
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}
