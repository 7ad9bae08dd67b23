package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/stackitdev/stackit/internal/database"
)

// Config represents the runtime configuration for the StackIt backend.
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Auth          AuthConfig         `mapstructure:"auth"`
	Monitoring    MonitoringConfig   `mapstructure:"monitoring"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Maintenance   MaintenanceConfig  `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string            `mapstructure:"driver"`
	Path     string            `mapstructure:"path"`
	DSN      string            `mapstructure:"dsn"`
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	User     string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Name     string            `mapstructure:"name"`
	Options  map[string]string `mapstructure:"options"`
}

// AuthConfig captures authentication-related settings.
type AuthConfig struct {
	JWT JWTSettings `mapstructure:"jwt"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// NotificationConfig toggles realtime notification streaming.
type NotificationConfig struct {
	StreamEnabled bool `mapstructure:"stream_enabled"`
}

// MaintenanceConfig controls background cleanup jobs.
type MaintenanceConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	RetentionDays int    `mapstructure:"notification_retention_days"`
	Schedule      string `mapstructure:"schedule"`
}

// DatabaseOptions maps the database section onto the database package config.
func (c *Config) DatabaseOptions() database.Config {
	return database.Config{
		Driver:   c.Database.Driver,
		Path:     c.Database.Path,
		DSN:      c.Database.DSN,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		Name:     c.Database.Name,
		Options:  c.Database.Options,
	}
}

// Validate reports configuration combinations the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWT.Secret) == "" {
		return errors.New("config: auth.jwt.secret is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	return nil
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("STACKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/stackit.sqlite")

	v.SetDefault("auth.jwt.issuer", "stackit")
	v.SetDefault("auth.jwt.access_token_ttl", "24h")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")

	v.SetDefault("notifications.stream_enabled", true)

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.notification_retention_days", 90)
	v.SetDefault("maintenance.schedule", "@daily")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
