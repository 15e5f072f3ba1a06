package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// keyPrefix namespaces limiter keys in a shared Redis instance
const keyPrefix = "ratelimit:"

// RedisStore backs the limiter with a shared Redis instance so limits hold
// across processes. Each key stores the window counter with an expiry at
// the window boundary; INCR preserves the TTL, matching fixed-window
// replace-on-expiry semantics.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// RedisConfig holds connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close releases the underlying connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, keyPrefix+key)
	ttlCmd := pipe.PTTL(ctx, keyPrefix+key)
	if _, err := pipe.Exec(ctx); err != nil {
		if err == redis.Nil {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	count, err := getCmd.Int()
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		// No expiry on the key; treat as absent so a fresh window is started
		return Entry{}, false, nil
	}

	return Entry{
		Count:     count,
		ResetTime: time.Now().Add(ttl),
	}, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entry Entry) error {
	ttl := time.Until(entry.ResetTime)
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	if err := s.client.Set(ctx, keyPrefix+key, entry.Count, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Increment(ctx context.Context, key string) error {
	if err := s.client.Incr(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	return nil
}
