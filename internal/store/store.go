package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every artifact key.
const KeyPrefix = "/diagrams/kroki/"

// Store holds rendered artifacts by file name.
type Store interface {
	// Get returns the artifact and true, or false on a miss.
	Get(ctx context.Context, name string) ([]byte, bool, error)
	Put(ctx context.Context, name string, data []byte) error
}

// Config holds Redis connection settings.
type Config struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TTL          time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		TTL:          24 * time.Hour,
	}
}

func validateConfig(cfg Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("redis address cannot be empty")
	}
	if cfg.DB < 0 || cfg.DB > 15 {
		return fmt.Errorf("redis database must be between 0 and 15, got %d", cfg.DB)
	}
	if cfg.TTL < 0 {
		return fmt.Errorf("ttl cannot be negative, got %v", cfg.TTL)
	}
	return nil
}

// redisClient is the subset of *redis.Client the store needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisStore implements Store on Redis.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisStore connects lazily to the configured Redis server.
func NewRedisStore(cfg Config) (*RedisStore, error) {
	def := DefaultConfig()
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.TTL == 0 {
		cfg.TTL = def.TTL
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid store configuration: %w", err)
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// Key returns the Redis key for an artifact file name.
func Key(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("artifact name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", fmt.Errorf("artifact name %q must not contain path separators", name)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return "", fmt.Errorf("artifact name %q contains control characters", name)
		}
	}
	return KeyPrefix + name, nil
}

func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	key, err := Key(name)
	if err != nil {
		return nil, false, err
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	key, err := Key(name)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Health pings the server.
func (s *RedisStore) Health(ctx context.Context) error {
	pong, err := s.client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	if pong != "PONG" {
		return fmt.Errorf("unexpected ping response: %s", pong)
	}
	return nil
}

// Close closes the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
