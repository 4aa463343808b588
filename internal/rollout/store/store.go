package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/metrics"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/query"
)

// ErrUnavailable is returned by every query while the store has no open pool.
var ErrUnavailable = errors.New("store unavailable")

// Store executes composed statements against the contractor_service schema over a bounded pgx
// pool. Every statement acquires and releases its own connection.
type Store struct {
	log *slog.Logger
	cfg Config

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return &Store{log: cfg.Logger, cfg: cfg}, nil
}

// Open connects the pool, retrying with exponential backoff for up to ConnectTimeout. On failure
// the store stays unavailable and can be reopened later.
func (s *Store) Open(ctx context.Context) error {
	if s.cfg.DatabaseURL == "" {
		s.log.Warn("store: no database url configured, analytics unavailable")
		return ErrUnavailable
	}

	poolCfg, err := pgxpool.ParseConfig(s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database url: %w", err)
	}
	poolCfg.MaxConns = s.cfg.MaxConns
	poolCfg.MinConns = s.cfg.MinConns
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(s.cfg.StatementTimeout.Milliseconds(), 10)
	poolCfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	attempt := 0
	pool, err := backoff.Retry(ctx, func() (*pgxpool.Pool, error) {
		attempt++
		if attempt > 1 {
			s.log.Warn("store: failed to connect, retrying", "attempt", attempt)
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, s.cfg.AcquireTimeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.cfg.ConnectTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.mu.Lock()
	old := s.pool
	s.pool = pool
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}

	s.log.Info("store: connected", "maxConns", s.cfg.MaxConns, "attempts", attempt)
	return nil
}

// Close releases the pool. The store reports unavailable afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.mu.Unlock()
	if pool != nil {
		pool.Close()
	}
}

// Available reports whether the pool is open. It does not touch the network.
func (s *Store) Available() bool {
	return s.currentPool() != nil
}

// Ping checks connectivity through the pool.
func (s *Store) Ping(ctx context.Context) error {
	pool := s.currentPool()
	if pool == nil {
		return ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AcquireTimeout)
	defer cancel()
	return pool.Ping(ctx)
}

func (s *Store) currentPool() *pgxpool.Pool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool
}

// exec runs fn on a freshly acquired connection. Acquisition and execution have separate
// deadlines.
func (s *Store) exec(ctx context.Context, stmt query.Statement, fn func(ctx context.Context, conn *pgxpool.Conn) error) error {
	pool := s.currentPool()
	if pool == nil {
		return ErrUnavailable
	}

	start := time.Now()
	acquireCtx, cancelAcquire := context.WithTimeout(ctx, s.cfg.AcquireTimeout)
	conn, err := pool.Acquire(acquireCtx)
	cancelAcquire()
	if err != nil {
		metrics.StoreQueryDuration.WithLabelValues(stmt.Name(), "acquire_error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	queryCtx, cancelQuery := context.WithTimeout(ctx, s.cfg.StatementTimeout)
	defer cancelQuery()

	err = fn(queryCtx, conn)
	status := "ok"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start)
	metrics.StoreQueryDuration.WithLabelValues(stmt.Name(), status).Observe(duration.Seconds())
	s.log.Debug("store: executed statement", "statement", stmt.Name(), "args", len(stmt.Args()), "duration", duration, "error", err)
	if err != nil {
		return fmt.Errorf("failed to execute %s: %w", stmt.Name(), err)
	}
	return nil
}
