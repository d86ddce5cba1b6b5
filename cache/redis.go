package cache

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisCache is a Redis-backed pattern cache. All patterns live in a single
// hash so they can be listed and cleared without scanning the keyspace.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	timeout   time.Duration
	logger    logrus.FieldLogger
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string        // Prefix for all keys (default: "codeshift:")
	Timeout   time.Duration // Per-operation timeout (default: 5s)
	Logger    logrus.FieldLogger
}

// DefaultKeyPrefix is used when no key prefix is configured.
const DefaultKeyPrefix = "codeshift:"

const defaultRedisTimeout = 5 * time.Second

// NewRedisCache creates a new Redis cache with the given configuration.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	c := NewRedisCacheFromClient(client, cfg.KeyPrefix)
	if cfg.Timeout > 0 {
		c.timeout = cfg.Timeout
	}
	if cfg.Logger != nil {
		c.logger = cfg.Logger
	}
	return c, nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient(client *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
		timeout:   defaultRedisTimeout,
		logger:    discardLogger(),
	}
}

// SetLogger sets the logger that reports failed lookups.
func (c *RedisCache) SetLogger(l logrus.FieldLogger) {
	c.logger = l
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// hashKey is the Redis hash holding every pattern.
func (c *RedisCache) hashKey() string {
	return c.keyPrefix + "patterns"
}

func (c *RedisCache) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// Get retrieves a value from Redis. A missing field is a plain miss; other
// errors are logged at Warn and also reported as a miss.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := c.ctx()
	defer cancel()

	val, err := c.client.HGet(ctx, c.hashKey(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Pattern cache lookup failed")
		return "", false
	}
	return val, true
}

// Set stores a value in Redis.
func (c *RedisCache) Set(key string, value string) error {
	ctx, cancel := c.ctx()
	defer cancel()
	return c.client.HSet(ctx, c.hashKey(), key, value).Err()
}

// Entries returns all stored patterns.
func (c *RedisCache) Entries() (map[string]string, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	entries, err := c.client.HGetAll(ctx, c.hashKey()).Result()
	if errors.Is(err, redis.Nil) {
		return map[string]string{}, nil
	}
	return entries, err
}

// Len returns the number of stored patterns, or 0 if Redis is unreachable.
func (c *RedisCache) Len() int {
	ctx, cancel := c.ctx()
	defer cancel()

	n, err := c.client.HLen(ctx, c.hashKey()).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// Clear removes every stored pattern.
func (c *RedisCache) Clear() error {
	ctx, cancel := c.ctx()
	defer cancel()
	return c.client.Del(ctx, c.hashKey()).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Verify RedisCache implements PatternCache
var _ PatternCache = (*RedisCache)(nil)
