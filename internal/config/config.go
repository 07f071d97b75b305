// Package config loads and validates healthd's configuration with viper,
// the way the teacher's own config package does: a typed struct with
// mapstructure tags, defaults set once in setDefaults, environment
// variable overrides, and a Validate method that returns wrapped errors
// rather than panicking.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the health evaluation daemon.
type Config struct {
	Health  HealthConfig  `mapstructure:"health"`
	Log     LogConfig     `mapstructure:"log"`
	App     AppConfig     `mapstructure:"app"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// HealthConfig carries the engine's own tunables (spec §6).
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`

	ConfigDir string `mapstructure:"config_dir"`
	StockDir  string `mapstructure:"stock_dir"`

	RunAtLeastEverySeconds int `mapstructure:"run_at_least_every_seconds"`
	PostponeHibernationSec int `mapstructure:"postpone_hibernation_seconds"`

	SilencersFile string `mapstructure:"silencers_file"`
	AlarmLogMax   int    `mapstructure:"alarm_log_max"`

	NotifierPath    string        `mapstructure:"notifier_path"`
	NotifierTimeout time.Duration `mapstructure:"notifier_timeout"`

	GlobCacheSize int `mapstructure:"glob_cache_size"`
}

// UserConfigDir and StockConfigDir resolve the two directory roots
// original_source's health_user_config_dir/health_stock_config_dir
// compute, kept here as simple accessors since this module does not own
// an alarm-template parser.
func (c HealthConfig) UserConfigDir() string { return c.ConfigDir }
func (c HealthConfig) StockConfigDir() string { return c.StockDir }

// LogConfig mirrors pkg/logger.Config's fields under mapstructure tags so
// the same struct can be populated from viper and handed straight to
// logger.NewLogger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AppConfig carries process-identity fields used in logs and metrics.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Addr      string `mapstructure:"addr"`
}

// LoadConfig reads configuration from path (if nonempty) plus environment
// variables prefixed HEALTHD_, applies defaults for anything unset, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("healthd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("health.enabled", true)
	v.SetDefault("health.config_dir", "/etc/healthd/health.d")
	v.SetDefault("health.stock_dir", "/usr/lib/healthd/conf.d/health.d")
	v.SetDefault("health.run_at_least_every_seconds", 10)
	v.SetDefault("health.postpone_hibernation_seconds", 60)
	v.SetDefault("health.silencers_file", "/etc/healthd/health.d/silencers.json")
	v.SetDefault("health.alarm_log_max", 1000)
	v.SetDefault("health.notifier_path", "/usr/lib/healthd/plugins.d/notify.sh")
	v.SetDefault("health.notifier_timeout", 30*time.Second)
	v.SetDefault("health.glob_cache_size", 512)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", true)

	v.SetDefault("app.name", "healthd")
	v.SetDefault("app.environment", "production")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "healthd")
	v.SetDefault("metrics.addr", ":9277")
}

// Validate checks invariants that can't be expressed as plain defaults.
func (c *Config) Validate() error {
	if c.Health.RunAtLeastEverySeconds < 1 {
		return fmt.Errorf("config: health.run_at_least_every_seconds must be >= 1, got %d", c.Health.RunAtLeastEverySeconds)
	}
	if c.Health.AlarmLogMax < 1 {
		return fmt.Errorf("config: health.alarm_log_max must be >= 1, got %d", c.Health.AlarmLogMax)
	}
	if c.Health.Enabled && c.Health.SilencersFile == "" {
		return fmt.Errorf("config: health.silencers_file is required when health.enabled is true")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("config: metrics.addr is required when metrics.enabled is true")
	}
	return nil
}
