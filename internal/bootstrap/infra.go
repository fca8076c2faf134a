package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/auth/token"
	"github.com/Valerdy/captive-portal-sub000/internal/cache"
	"github.com/Valerdy/captive-portal-sub000/internal/config"
	"github.com/Valerdy/captive-portal-sub000/internal/security"
	"github.com/Valerdy/captive-portal-sub000/internal/support/hash"
)

// Infrastructure bundles shared helpers required by the services.
type Infrastructure struct {
	Cache       cache.Store
	Token       *token.Manager
	Hasher      hash.Hasher
	RateLimiter *security.RateLimiter
	Audit       security.Recorder
}

// BuildInfrastructure wires cache, token, hash and rate limiting helpers from
// the configuration.
func BuildInfrastructure(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	cacheStore, err := buildCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.SigningKey == "" || cfg.Auth.SigningKey == "change-me" {
		return nil, fmt.Errorf("auth.signing_key must be set to a non-default value")
	}

	tokenManager, err := token.NewManager(token.Options{
		SigningKey: []byte(cfg.Auth.SigningKey),
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		TTL:        cfg.Auth.TokenTTL,
		Leeway:     cfg.Auth.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	hasher, err := hash.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt hasher: %w", err)
	}

	rateLimiter, err := security.NewRateLimiter(cacheStore)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	audit := security.NewLoggerRecorder(logger)

	return &Infrastructure{
		Cache:       cacheStore,
		Token:       tokenManager,
		Hasher:      hasher,
		RateLimiter: rateLimiter,
		Audit:       audit,
	}, nil
}

func buildCache(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	switch cfg.Backend {
	case "", "memory":
		return cache.NewStore(cache.Options{
			Prefix:          "portal",
			DefaultTTL:      ttl,
			CleanupInterval: time.Minute,
		}), nil
	case "redis":
		store, err := cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			DefaultTTL: ttl,
			Prefix:     "portal",
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
