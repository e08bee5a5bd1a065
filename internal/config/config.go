// Package config provides configuration types and loading for Storegate.
package config

import (
	"github.com/spf13/viper"
)

// Config is the top-level configuration for Storegate.
type Config struct {
	// Server configures the HTTP server listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Auth configures credentials and token signing.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Storage selects and configures the persistence backend.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Telemetry configures trace and metric export.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// HTTPAddr is the listen address. Default: "127.0.0.1:8080".
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr"`
	// LogLevel is the minimum log level: debug, info, warn, error.
	// Default: "info".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// AuthConfig configures token signing and the static service key.
type AuthConfig struct {
	// SigningSecret is the HMAC secret for token signing. Required:
	// startup fails without it rather than serving unverifiable tokens.
	SigningSecret string `yaml:"signing_secret" mapstructure:"signing_secret" validate:"required"`
	// ServiceKey is the static machine-to-machine secret for account
	// provisioning. Optional: when empty, provisioning routes reject
	// every request with an internal error until a key is configured.
	ServiceKey string `yaml:"service_key" mapstructure:"service_key"`
	// HashWorkers bounds concurrent password hash computations.
	// Zero selects GOMAXPROCS.
	HashWorkers int `yaml:"hash_workers" mapstructure:"hash_workers" validate:"gte=0"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is "memory" or "sqlite". Default: "memory".
	Driver string `yaml:"driver" mapstructure:"driver" validate:"omitempty,oneof=memory sqlite"`
	// Path is the SQLite database file. Required when Driver is "sqlite".
	Path string `yaml:"path" mapstructure:"path"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	// Enabled turns on trace and metric export. Default: false.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// SetDefaults applies default values for optional fields.
func (c *Config) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded, or an empty string in env-vars-only mode.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
