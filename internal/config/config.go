package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the plyght client configuration
type Config struct {
	// Plotting server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics endpoint
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Capture sink used by `plyght capture`
	Capture CaptureConfig `json:"capture" mapstructure:"capture"`
}

// ServerConfig holds the plotting server location
type ServerConfig struct {
	Address string `json:"address" mapstructure:"address"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"` // debug, info, warn, error
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// MetricsConfig holds Prometheus endpoint configuration
type MetricsConfig struct {
	Address string `json:"address" mapstructure:"address"` // empty disables the endpoint
}

// CaptureConfig holds capture sink configuration
type CaptureConfig struct {
	Listen string `json:"listen" mapstructure:"listen"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "127.0.0.1:41410",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
		Capture: CaptureConfig{
			Listen: "127.0.0.1:41410",
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	v := NewValidator()

	if err := v.ValidateAddress(c.Server.Address); err != nil {
		return fmt.Errorf("server.address: %w", err)
	}
	if err := v.ValidateLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Metrics.Address != "" {
		if err := v.ValidateAddress(c.Metrics.Address); err != nil {
			return fmt.Errorf("metrics.address: %w", err)
		}
	}
	if err := v.ValidateAddress(c.Capture.Listen); err != nil {
		return fmt.Errorf("capture.listen: %w", err)
	}

	return nil
}
