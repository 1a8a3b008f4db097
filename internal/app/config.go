package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the SkillBazaar broker.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Payment    PaymentConfig    `mapstructure:"payment"`
	Execution  ExecutionConfig  `mapstructure:"execution"`
	Health     HealthConfig     `mapstructure:"health"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
// SQLite is the default embedded store.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig holds the per-key staleness bounds for hot read endpoints.
type CacheConfig struct {
	SkillsTTL    time.Duration `mapstructure:"skills_ttl"`
	AnalyticsTTL time.Duration `mapstructure:"analytics_ttl"`
	BalanceTTL   time.Duration `mapstructure:"balance_ttl"`
}

// PaymentConfig points at the x402 payment gateway sidecar.
type PaymentConfig struct {
	GatewayURL string        `mapstructure:"gateway_url"`
	Address    string        `mapstructure:"address"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ExecutionConfig bounds a single paid call.
type ExecutionConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// HealthConfig controls liveness probing of skill servers.
type HealthConfig struct {
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	SweepEnabled  bool          `mapstructure:"sweep_enabled"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

// MonitoringConfig enables metrics endpoints.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoadConfig reads config.yaml from ./config (or the supplied paths) and
// applies SKILLBAZAAR_* environment overrides. A missing file is not an
// error; defaults cover every key.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("SKILLBAZAAR")
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

// Validate rejects configurations the broker cannot start with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Payment.GatewayURL) == "" {
		return errors.New("payment.gateway_url must be configured")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/skills.db")

	v.SetDefault("cache.skills_ttl", "5s")
	v.SetDefault("cache.analytics_ttl", "10s")
	v.SetDefault("cache.balance_ttl", "15s")

	v.SetDefault("payment.gateway_url", "http://127.0.0.1:8402")
	v.SetDefault("payment.timeout", "30s")

	v.SetDefault("execution.timeout", "10s")

	v.SetDefault("health.probe_timeout", "2s")
	v.SetDefault("health.sweep_enabled", true)
	v.SetDefault("health.sweep_schedule", "@every 1m")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
}

func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}
