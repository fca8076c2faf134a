package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from config.yaml, .env and PORTAL_* environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/portal/")

	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing config file is fine, defaults and env vars apply.
	}

	if err := loadDotEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0:8080")
	v.SetDefault("http.shutdown_timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "production")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/portal.db")

	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("auth.refresh_ttl", "168h")
	v.SetDefault("auth.issuer", "portal")
	v.SetDefault("auth.audience", "portal-admin")
	v.SetDefault("auth.leeway", "30s")
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("security.rate_limit_per_minute", 120)
	v.SetDefault("security.rate_limit_burst", 30)
	v.SetDefault("security.max_body_bytes", 1<<20)
	v.SetDefault("security.allowed_origins", []string{"*"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "portal")
	v.SetDefault("metrics.subsystem", "http")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.default_ttl", "5m")
	v.SetDefault("cache.redis.addr", "127.0.0.1:6379")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("nas.timeout", "5s")
	v.SetDefault("nas.retry_max", "30s")

	v.SetDefault("monitoring.sample_interval", "3s")
	v.SetDefault("monitoring.retention", "24h")
	v.SetDefault("monitoring.history_window", "1h")
	v.SetDefault("monitoring.ring_size", 1200)

	v.SetDefault("quota.enforce_interval", "1m")
	v.SetDefault("quota.session_stale", "15m")
	v.SetDefault("quota.device_inactive", "720h")
}

func loadDotEnv(v *viper.Viper) error {
	candidates := []string{".", "..", "../.."}
	for _, path := range candidates {
		file := filepath.Clean(filepath.Join(path, ".env"))
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat .env: %w", err)
		}

		// Separate viper instance for .env to avoid type confusion with the
		// main config.
		envViper := viper.New()
		envViper.SetConfigFile(file)
		envViper.SetConfigType("env")
		if err := envViper.ReadInConfig(); err != nil {
			return fmt.Errorf("read .env: %w", err)
		}

		bindLegacyEnv(v, envViper)
	}
	return nil
}

// bindLegacyEnv maps flat .env variables to the hierarchical structure.
func bindLegacyEnv(target *viper.Viper, source *viper.Viper) {
	mappings := map[string]string{
		"HTTP_ADDR":               "http.addr",
		"SHUTDOWN_TIMEOUT":        "http.shutdown_timeout",
		"LOG_LEVEL":               "log.level",
		"LOG_FORMAT":              "log.format",
		"ENV":                     "log.environment",
		"DB_PATH":                 "database.path",
		"AUTH_SIGNING_KEY":        "auth.signing_key",
		"AUTH_TOKEN_TTL":          "auth.token_ttl",
		"AUTH_BCRYPT_COST":        "auth.bcrypt_cost",
		"NAS_DISCONNECT_URL":      "nas.disconnect_url",
		"NAS_SECRET":              "nas.secret",
		"NAS_PING_HOST":           "nas.ping_host",
		"ACCOUNTING_TOKEN":        "security.accounting_token",
		"REDIS_ADDR":              "cache.redis.addr",
		"REDIS_PASSWORD":          "cache.redis.password",
		"CACHE_BACKEND":           "cache.backend",
		"MONITORING_INTERFACE":    "monitoring.interface",
		"MONITORING_RETENTION":    "monitoring.retention",
		"QUOTA_ENFORCE_INTERVAL":  "quota.enforce_interval",
	}

	for oldKey, newKey := range mappings {
		if val := source.GetString(oldKey); val != "" {
			target.Set(newKey, val)
		}
	}
}
