package store

import (
	"errors"
	"log/slog"
	"time"
)

const (
	defaultMaxConns         = 10
	defaultMinConns         = 1
	defaultAcquireTimeout   = 10 * time.Second
	defaultStatementTimeout = 30 * time.Second
	defaultConnectTimeout   = 30 * time.Second
)

type Config struct {
	Logger *slog.Logger

	// DatabaseURL is a postgres:// connection string. An empty URL leaves the store unavailable.
	DatabaseURL string

	MaxConns int32
	MinConns int32

	// AcquireTimeout bounds waiting for a pooled connection.
	AcquireTimeout time.Duration

	// StatementTimeout bounds a single statement, enforced both server side and by context.
	StatementTimeout time.Duration

	// ConnectTimeout bounds the total time spent retrying the initial connection.
	ConnectTimeout time.Duration
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.MaxConns < 0 || cfg.MinConns < 0 {
		return errors.New("connection limits must not be negative")
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = defaultMaxConns
	}
	if cfg.MinConns == 0 {
		cfg.MinConns = defaultMinConns
	}
	if cfg.MinConns > cfg.MaxConns {
		return errors.New("min connections must not exceed max connections")
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = defaultAcquireTimeout
	}
	if cfg.StatementTimeout <= 0 {
		cfg.StatementTimeout = defaultStatementTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	return nil
}
