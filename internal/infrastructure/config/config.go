package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Import    ImportConfig
	Metrics   MetricsConfig
	Superuser SuperuserConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=healthcare"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

// RedisConfig is optional. With an empty address the import runs without a
// run lock.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type ImportConfig struct {
	// Root overrides project root discovery.
	Root    string        `env:"IMPORT_ROOT"`
	LockTTL time.Duration `env:"IMPORT_LOCK_TTL, default=10m"`
}

type MetricsConfig struct {
	// PushgatewayURL enables pushing import metrics at the end of a run.
	PushgatewayURL string `env:"METRICS_PUSHGATEWAY_URL"`
}

type SuperuserConfig struct {
	Email    string `env:"SUPERUSER_EMAIL"`
	Password string `env:"SUPERUSER_PASSWORD"`
	Name     string `env:"SUPERUSER_NAME"`
}

// Pretty reports whether logs should use the human-friendly console format.
func (c *Config) Pretty() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
