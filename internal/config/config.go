package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr               string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat          string        `mapstructure:"log_format" yaml:"log_format"`
	MaxMessageBytes    int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	PresenceDelay      time.Duration `mapstructure:"presence_delay" yaml:"presence_delay"`
	StaticDir          string        `mapstructure:"static_dir" yaml:"static_dir"`
	Storage            StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// StorageConfig selects and configures the snapshot backend.
type StorageConfig struct {
	Backend      string `mapstructure:"backend" yaml:"backend"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	RedisAddr    string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPrefix  string `mapstructure:"redis_prefix" yaml:"redis_prefix"`

	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":3000",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		LogFormat:          "console",
		MaxMessageBytes:    1 << 20,
		RateLimitPerMinute: 0,
		PresenceDelay:      50 * time.Millisecond,
		Storage: StorageConfig{
			Backend:      "file",
			DataDir:      "data",
			DatabasePath: "data/wiredoc.db",
			RedisAddr:    "localhost:6379",
			RedisPrefix:  "wiredoc:snapshot:",
			Timeout:      5 * time.Second,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = other.RateLimitPerMinute
	}
	if other.PresenceDelay != 0 {
		c.PresenceDelay = other.PresenceDelay
	}
	if other.StaticDir != "" {
		c.StaticDir = other.StaticDir
	}
	if other.Storage.Backend != "" {
		c.Storage.Backend = other.Storage.Backend
	}
	if other.Storage.DataDir != "" {
		c.Storage.DataDir = other.Storage.DataDir
	}
	if other.Storage.DatabasePath != "" {
		c.Storage.DatabasePath = other.Storage.DatabasePath
	}
	if other.Storage.RedisAddr != "" {
		c.Storage.RedisAddr = other.Storage.RedisAddr
	}
	if other.Storage.RedisPrefix != "" {
		c.Storage.RedisPrefix = other.Storage.RedisPrefix
	}
	if other.Storage.Timeout != 0 {
		c.Storage.Timeout = other.Storage.Timeout
	}
}
