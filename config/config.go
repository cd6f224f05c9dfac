// Package config loads smoke settings from a YAML file, an optional .env file
// and SMOKE_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/NetPo4ki/go-smoke/logger"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "SMOKE"

// Config is the root configuration.
type Config struct {
	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	Path string `yaml:"path" mapstructure:"path"`
}

// ApplyDefaults fills in unset fields of every section.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	c.Scheduler.ApplyDefaults()
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate validates every section.
func (c *Config) Validate() error {
	return errors.Join(c.Logging.Validate(), c.Scheduler.Validate())
}

// LoaderConfig holds optional file overrides.
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets the YAML file to read.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets a .env file to load into the process environment. Values
// already present in the environment are not overridden.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads, defaults and validates the configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	if lc.EnvFile != "" {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", lc.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if lc.ConfigFile != "" {
		if _, err := os.Stat(lc.ConfigFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", lc.ConfigFile, err)
		}
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", lc.ConfigFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", logger.FormatConsole)
	v.SetDefault("logging.no_color", false)
	v.SetDefault("logging.timestamp", true)
	v.SetDefault("scheduler.name", "")
	v.SetDefault("scheduler.backend", BackendPool)
	v.SetDefault("scheduler.threads", 0)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")
}
