package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configure the Redis-backed cache.
type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	DefaultTTL time.Duration
	Prefix     string
}

// NewRedisStore connects to Redis and returns a Store over it. The connection
// is verified with a short ping so a wrong address fails at startup instead of
// on the first request.
func NewRedisStore(ctx context.Context, opts RedisOptions) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	defaultTTL := opts.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &redisStore{
		client:     client,
		defaultTTL: defaultTTL,
		prefix:     normalizePrefix(opts.Prefix),
	}, nil
}

type redisStore struct {
	client     *redis.Client
	defaultTTL time.Duration
	prefix     string
}

func (s *redisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefixed(key), value, s.normalizeTTL(ttl)).Err()
}

func (s *redisStore) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.Set(ctx, key, value, ttl)
}

func (s *redisStore) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.Set(ctx, key, value, ttl)
}

func (s *redisStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.SetBytes(ctx, key, data, ttl)
}

func (s *redisStore) Get(ctx context.Context, key string) (any, bool) {
	raw, err := s.client.Get(ctx, s.prefixed(key)).Result()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (s *redisStore) GetString(ctx context.Context, key string) (string, bool) {
	raw, err := s.client.Get(ctx, s.prefixed(key)).Result()
	if err != nil {
		return "", false
	}
	return raw, true
}

func (s *redisStore) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	raw, err := s.client.Get(ctx, s.prefixed(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (s *redisStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := s.GetBytes(ctx, key)
	if !ok {
		return false, nil
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *redisStore) Delete(ctx context.Context, key string) {
	s.client.Del(ctx, s.prefixed(key))
}

func (s *redisStore) TTL(ctx context.Context, key string) (time.Duration, bool) {
	ttl, err := s.client.TTL(ctx, s.prefixed(key)).Result()
	if err != nil || ttl <= 0 {
		return 0, false
	}
	return ttl, true
}

func (s *redisStore) Namespace(prefix string) Store {
	return &redisStore{
		client:     s.client,
		defaultTTL: s.defaultTTL,
		prefix:     joinPrefixes(s.prefix, prefix),
	}
}

func (s *redisStore) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return 0, nil
	}
	full := s.prefixed(trimmed)

	current, err := s.client.IncrBy(ctx, full, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("cache increment failed: %w", err)
	}
	// Stamp the TTL only when the key has none, so a counter window is not
	// extended by every hit.
	existing, err := s.client.TTL(ctx, full).Result()
	if err == nil && existing < 0 {
		s.client.Expire(ctx, full, s.normalizeTTL(ttl))
	}
	return current, nil
}

func (s *redisStore) normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return s.defaultTTL
	}
	return ttl
}

func (s *redisStore) prefixed(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.prefix
	}
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// IsNil reports whether err is the Redis missing-key reply.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
