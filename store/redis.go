package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/codeshift"
)

// DefaultRedisKey is the key holding the snapshot.
const DefaultRedisKey = "codeshift:state"

// RedisStore keeps the snapshot under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL string // Redis connection URL (e.g., "redis://localhost:6379/0")
	Key string // Key holding the snapshot (default: "codeshift:state")
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &codeshift.StoreError{Message: "parsing redis URL", Cause: err}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, &codeshift.StoreError{Message: "connecting to redis", Cause: err, Retryable: true}
	}

	return NewRedisStoreFromClient(client, cfg.Key), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing client.
func NewRedisStoreFromClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Load reads the snapshot. A missing key is not an error.
func (s *RedisStore) Load(ctx context.Context) (*codeshift.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, &codeshift.StoreError{Message: "redis GET", Cause: err, Retryable: true}
	}
	return decode(data)
}

// Save replaces the snapshot.
func (s *RedisStore) Save(ctx context.Context, snap *codeshift.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return &codeshift.StoreError{Message: "redis SET", Cause: err, Retryable: true}
	}
	return nil
}

// Clear deletes the snapshot key.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return &codeshift.StoreError{Message: "redis DEL", Cause: err, Retryable: true}
	}
	return nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return &codeshift.StoreError{Message: "redis PING", Cause: err, Retryable: true}
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Verify RedisStore implements codeshift.StateStore
var _ codeshift.StateStore = (*RedisStore)(nil)
