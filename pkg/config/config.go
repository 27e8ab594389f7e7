package config

import "time"

// Config holds the full runtime configuration of the navigation bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Server    ServerConfig    `mapstructure:"server"`
	Language  string          `mapstructure:"language" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Session   SessionConfig   `mapstructure:"session"`
	Planner   PlannerConfig   `mapstructure:"planner" validate:"required"`
	Directory DirectoryConfig `mapstructure:"directory"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

// BotConfig configures the Telegram connection.
type BotConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Mode    string        `mapstructure:"mode" validate:"oneof=long_poll webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
	Listen  string        `mapstructure:"listen"`
}

// ServerConfig configures the metrics and health HTTP endpoint.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// StorageConfig configures the on-disk user data document.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// SessionConfig configures conversation session expiry.
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	CleanInterval time.Duration `mapstructure:"clean_interval"`
}

// PlannerConfig configures the route planning service client.
type PlannerConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// DirectoryConfig configures the station catalog fetcher.
type DirectoryConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// RateLimitConfig configures per-user and per-command rate limits.
type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	PerUser   RateLimitRule `mapstructure:"per_user"`
	Commands  CommandLimits `mapstructure:"commands"`
	Whitelist []int64       `mapstructure:"whitelist"`
}

// CommandLimits holds the per-command rules for the expensive commands.
type CommandLimits struct {
	Path    RateLimitRule `mapstructure:"path"`
	Search  RateLimitRule `mapstructure:"search"`
	Station RateLimitRule `mapstructure:"station"`
	Route   RateLimitRule `mapstructure:"route"`
}

// RateLimitRule is a limit over a sliding window.
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format" validate:"oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}
