package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Assessments left untouched for a week are considered abandoned
const progressTTL = 7 * 24 * time.Hour

// RedisProgressStore persists assessment snapshots in Redis. It satisfies
// the engine's ProgressStore interface.
type RedisProgressStore struct {
	client *redis.Client
}

func NewRedisProgressStore(client *redis.Client) *RedisProgressStore {
	return &RedisProgressStore{
		client: client,
	}
}

func (s *RedisProgressStore) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return data, true, nil
}

func (s *RedisProgressStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, progressTTL).Err()
}

func (s *RedisProgressStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
