// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	// Run gets its marching orders from CLI flags as well as the config file.
	Run RunConfig `mapstructure:"run" yaml:"run"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless        bool     `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors bool     `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Debug           bool     `mapstructure:"debug" yaml:"debug"`
	Args            []string `mapstructure:"args" yaml:"args"`
	UserAgent       string   `mapstructure:"user_agent" yaml:"user_agent"`
}

// NetworkConfig tunes the network behavior of the browser session.
type NetworkConfig struct {
	NavigationTimeout time.Duration     `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	Headers           map[string]string `mapstructure:"headers" yaml:"headers"`
}

// RunConfig describes one interaction run: where to go, what to inject,
// which elements to wait on, and how long to wait for them.
type RunConfig struct {
	TargetURL       string        `mapstructure:"target_url" yaml:"target_url"`
	InputSelector   string        `mapstructure:"input_selector" yaml:"input_selector"`
	TriggerSelector string        `mapstructure:"trigger_selector" yaml:"trigger_selector"`
	ElementTimeout  time.Duration `mapstructure:"element_timeout" yaml:"element_timeout"`
	SettleDelay     time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	PayloadFile     string        `mapstructure:"payload_file" yaml:"payload_file"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "formrun")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.debug", false)
	v.SetDefault("browser.user_agent", "")

	// -- Network --
	v.SetDefault("network.navigation_timeout", "60s")

	// -- Run --
	v.SetDefault("run.target_url", "http://localhost:3000/paste-json")
	v.SetDefault("run.input_selector", "#json-text")
	v.SetDefault("run.trigger_selector", "#submit-button")
	v.SetDefault("run.element_timeout", "10s")
	v.SetDefault("run.settle_delay", "2s")
	v.SetDefault("run.payload_file", "")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be 'console' or 'json', got %q", c.Logger.Format)
	}
	if c.Network.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be a positive duration")
	}
	return c.Run.Validate()
}

// Validate checks the run section. TargetURL must be an absolute http(s) URL
// because the run is a single navigation with no base URL to resolve against.
func (r *RunConfig) Validate() error {
	if r.TargetURL == "" {
		return fmt.Errorf("run.target_url is required")
	}
	u, err := url.Parse(r.TargetURL)
	if err != nil {
		return fmt.Errorf("run.target_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("run.target_url must use http or https, got %q", u.Scheme)
	}
	if r.InputSelector == "" {
		return fmt.Errorf("run.input_selector is required")
	}
	if r.TriggerSelector == "" {
		return fmt.Errorf("run.trigger_selector is required")
	}
	if r.ElementTimeout <= 0 {
		return fmt.Errorf("run.element_timeout must be a positive duration")
	}
	if r.SettleDelay < 0 {
		return fmt.Errorf("run.settle_delay must not be negative")
	}
	return nil
}
