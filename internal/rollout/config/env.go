package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env holds the service settings read from the environment. Zero values fall back to each
// component's defaults.
type Env struct {
	DatabaseURL      string        `env:"DATABASE_URL"`
	DBMaxConns       int32         `env:"ROLLOUT_DB_MAX_CONNS" envDefault:"10"`
	DBMinConns       int32         `env:"ROLLOUT_DB_MIN_CONNS" envDefault:"1"`
	StatementTimeout time.Duration `env:"ROLLOUT_DB_STATEMENT_TIMEOUT" envDefault:"30s"`
	AcquireTimeout   time.Duration `env:"ROLLOUT_DB_ACQUIRE_TIMEOUT" envDefault:"10s"`
	ConnectTimeout   time.Duration `env:"ROLLOUT_DB_CONNECT_TIMEOUT" envDefault:"30s"`

	CacheTTL      time.Duration `env:"ROLLOUT_CACHE_TTL" envDefault:"300s"`
	StatusWorkers int           `env:"ROLLOUT_STATUS_WORKERS" envDefault:"3"`

	AnthropicModel     string        `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-20241022"`
	AnthropicMaxTokens int64         `env:"ANTHROPIC_MAX_TOKENS" envDefault:"1024"`
	ClassifyTimeout    time.Duration `env:"ROLLOUT_CLASSIFY_TIMEOUT" envDefault:"30s"`

	AllowedOrigins []string `env:"ROLLOUT_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Env from the process environment.
func Load() (Env, error) {
	var cfg Env
	if err := ParseEnv(&cfg); err != nil {
		return Env{}, err
	}
	return cfg, nil
}
