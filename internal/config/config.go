// Package config loads cmd/crawlservd's process-level settings. Every
// per-website, per-url-list and per-module setting instead lives in
// store.Configuration/store.QueryRecord rows and is loaded at runtime
// by internal/api's module loaders — this struct only covers what has
// to exist before the first database connection does.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is cmd/crawlservd's environment, grounded on the teacher's
// internal/platform/config.Config field-per-setting/envDefault idiom.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	PostgresDSN string `env:"POSTGRES_DSN,required"`

	APIPort    int `env:"API_PORT" envDefault:"8000"`
	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	HTTPUserAgent  string        `env:"HTTP_USER_AGENT" envDefault:"crawlservpp-sub000/1.0"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	HTTPErrorDelay time.Duration `env:"HTTP_ERROR_DELAY" envDefault:"5s"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env (if present, silently skipped otherwise) and then the
// process environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
