package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"procurement_tracker/internal/models"
)

// stateKey is the single fixed key the whole tree lives under.
const stateKey = "procurement:state"

// RedisStore persists the state tree as one JSON blob in redis. Every
// save overwrites the previous snapshot, so the stored tree is always
// internally consistent and needs no field-level migration.
type RedisStore struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Save(ctx context.Context, state models.AppState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := s.rdb.Set(ctx, stateKey, blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to write state snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (*models.AppState, error) {
	val, err := s.rdb.Get(ctx, stateKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state snapshot: %w", err)
	}

	var state models.AppState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state snapshot: %w", err)
	}
	return &state, nil
}

// Close releases the redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
