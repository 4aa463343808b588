package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/rollout-analytics/internal/rollout"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/cache"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/query"
)

const (
	defaultCacheTTL      = 5 * time.Minute
	defaultStatusWorkers = 3
)

// Store executes composed statements. Implementations acquire a connection per call.
type Store interface {
	Available() bool
	Scalar(ctx context.Context, stmt query.Statement) (int64, error)
	Ports(ctx context.Context, stmt query.Statement) ([]rollout.PortsRow, error)
	DeliveredAddresses(ctx context.Context, stmt query.Statement) ([]rollout.DeliveredAddress, error)
	AddressStatuses(ctx context.Context, stmt query.Statement) ([]rollout.AddressStatus, error)
}

type Config struct {
	Logger *slog.Logger
	Store  Store

	// Cache is shared across resolutions. A fresh cache is created when nil.
	Cache    *cache.Cache[Key, any]
	CacheTTL time.Duration

	Clock clockwork.Clock

	// StatusWorkers bounds the concurrent count queries of an objects status resolution.
	StatusWorkers int
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Store == nil {
		return errors.New("store is required")
	}
	if cfg.CacheTTL < 0 {
		return errors.New("cache ttl must not be negative")
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.New[Key, any]()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.StatusWorkers <= 0 {
		cfg.StatusWorkers = defaultStatusWorkers
	}
	return nil
}
