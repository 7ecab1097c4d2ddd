package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	EventBus    EventBusConfig    `mapstructure:"event_bus" validate:"required"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the database settings. The URL is only required
// when the postgres idempotency backend is selected.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// RedisConfig contains the redis settings. The address is only required
// when the redis idempotency backend is selected.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// EventBusConfig contains the event bus dispatch settings. Per-handler
// descriptors may override the defaults.
type EventBusConfig struct {
	// DefaultTimeout bounds a single handler attempt when a descriptor
	// does not set its own timeout.
	DefaultTimeout time.Duration `mapstructure:"default_timeout" validate:"required,gt=0"`

	// DefaultMaxAttempts is the attempt budget when a descriptor does
	// not set its own retry policy.
	DefaultMaxAttempts int `mapstructure:"default_max_attempts" validate:"required,gte=1"`

	// ShutdownGrace bounds how long Close waits for in-flight handler
	// deliveries before abandoning them.
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace" validate:"required,gt=0"`
}

// IdempotencyConfig selects where completion records live. The in-memory
// backend de-duplicates retries within a single process lifetime; postgres
// and redis survive restarts.
type IdempotencyConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory postgres redis"`
}
