package config

import (
	"log/slog"
	"time"
)

// Config aggregates the whole application configuration.
type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Security   SecurityConfig   `mapstructure:"security"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Cache      CacheConfig      `mapstructure:"cache"`
	NAS        NASConfig        `mapstructure:"nas"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Quota      QuotaConfig      `mapstructure:"quota"`
}

// HTTPConfig defines the HTTP server settings.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	AddSource   bool   `mapstructure:"add_source"`
	Environment string `mapstructure:"environment"`
}

// DBConfig defines database settings.
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// AuthConfig defines admin authentication settings.
type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	Leeway     time.Duration `mapstructure:"leeway"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// SecurityConfig defines request protection settings. AccountingToken guards
// the NAS accounting ingest endpoint.
type SecurityConfig struct {
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int      `mapstructure:"rate_limit_burst"`
	MaxBodyBytes       int64    `mapstructure:"max_body_bytes"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	AccountingToken    string   `mapstructure:"accounting_token"`
}

// MetricsConfig defines Prometheus settings.
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Subsystem string    `mapstructure:"subsystem"`
	Buckets   []float64 `mapstructure:"buckets"`
}

// CacheConfig selects the cache backend. Redis is optional; the in-memory
// backend suits single-binary deployments.
type CacheConfig struct {
	Backend    string        `mapstructure:"backend"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

// RedisConfig defines the Redis connection when the redis backend is selected.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NASConfig defines how the panel reaches the network access server.
type NASConfig struct {
	DisconnectURL string        `mapstructure:"disconnect_url"`
	Secret        string        `mapstructure:"secret"`
	PingHost      string        `mapstructure:"ping_host"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryMax      time.Duration `mapstructure:"retry_max"`
}

// MonitoringConfig defines dashboard sampling settings.
type MonitoringConfig struct {
	SampleInterval time.Duration `mapstructure:"sample_interval"`
	Retention      time.Duration `mapstructure:"retention"`
	HistoryWindow  time.Duration `mapstructure:"history_window"`
	RingSize       int           `mapstructure:"ring_size"`
	Interface      string        `mapstructure:"interface"`
}

// QuotaConfig defines the enforcement loop settings.
type QuotaConfig struct {
	EnforceInterval time.Duration `mapstructure:"enforce_interval"`
	SessionStale    time.Duration `mapstructure:"session_stale"`
	DeviceInactive  time.Duration `mapstructure:"device_inactive"`
}

func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
