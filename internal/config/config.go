// Package config loads service configuration from an optional config file and the
// environment. Every key can be set as OFFERCAT_<SECTION>_<KEY>; the legacy names
// SPANNER_DATABASE, GRPC_PORT and HTTP_PORT are still honoured.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverSpanner  = "spanner"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	HTTPPort        string        `mapstructure:"http_port"`
	GRPCPort        string        `mapstructure:"grpc_port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects and configures the catalog store.
type StoreConfig struct {
	Driver          string `mapstructure:"driver"`
	SpannerDatabase string `mapstructure:"spanner_database"`
	PostgresDSN     string `mapstructure:"postgres_dsn"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// RateLimitConfig throttles public routes per client.
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

// PubSubConfig is used by the outbox relay.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LogConfig sets the zap level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads config.yaml from the working directory or ./config when present,
// then applies environment overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return load(v)
}

// LoadFile reads an explicit config file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("OFFERCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("server.grpc_port", "9090")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("store.driver", DriverSpanner)
	v.SetDefault("store.spanner_database", "projects/test-project/instances/dev-instance/databases/offer-catalog-db")
	v.SetDefault("store.postgres_dsn", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("ratelimit.per_minute", 600)
	v.SetDefault("ratelimit.burst", 50)

	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic", "catalog-events")

	v.SetDefault("log.level", "info")
}

func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("store.spanner_database", "OFFERCAT_STORE_SPANNER_DATABASE", "SPANNER_DATABASE")
	_ = v.BindEnv("server.grpc_port", "OFFERCAT_SERVER_GRPC_PORT", "GRPC_PORT")
	_ = v.BindEnv("server.http_port", "OFFERCAT_SERVER_HTTP_PORT", "HTTP_PORT")
	_ = v.BindEnv("log.level", "OFFERCAT_LOG_LEVEL", "LOG_LEVEL")
}

func validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case DriverSpanner:
		if cfg.Store.SpannerDatabase == "" {
			return errors.New("store.spanner_database is required for the spanner driver")
		}
	case DriverPostgres:
		if cfg.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn is required for the postgres driver (set OFFERCAT_STORE_POSTGRES_DSN)")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("store.driver must be spanner, postgres or memory, got: %q", cfg.Store.Driver)
	}

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (set OFFERCAT_AUTH_JWT_SECRET)")
	}
	if cfg.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("ratelimit.per_minute must be positive, got: %d", cfg.RateLimit.PerMinute)
	}
	return nil
}
