package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/malbeclabs/rollout-analytics/internal/rollout/engine"
)

const (
	defaultReadHeaderTimeout = 30 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultMaxQuestionLength = 1000
)

// Resolver answers classified analytics requests.
type Resolver interface {
	Resolve(ctx context.Context, req engine.Request) engine.Outcome
	ClearCache()
	Available() bool
}

// Classifier maps free text to a request and answers non-analytics questions.
type Classifier interface {
	Classify(ctx context.Context, question string) engine.Request
	Answer(ctx context.Context, question string) string
}

type Config struct {
	Logger       *slog.Logger
	HTTPListener net.Listener
	Resolver     Resolver
	Classifier   Classifier

	AllowedOrigins    []string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	// MaxQuestionLength caps the question size in runes.
	MaxQuestionLength int
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.HTTPListener == nil {
		return errors.New("http listener is required")
	}
	if cfg.Resolver == nil {
		return errors.New("resolver is required")
	}
	if cfg.Classifier == nil {
		return errors.New("classifier is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.MaxQuestionLength <= 0 {
		cfg.MaxQuestionLength = defaultMaxQuestionLength
	}
	return nil
}
