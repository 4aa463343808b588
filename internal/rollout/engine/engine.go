package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/alitto/pond/v2"
	"github.com/malbeclabs/rollout-analytics/internal/rollout"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/metrics"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/query"
)

// Engine resolves classified analytics questions into shaped outcomes. It is safe for concurrent
// use; resolutions share only the cache and the store.
type Engine struct {
	log *slog.Logger
	cfg Config

	statusPool pond.ResultPool[int64]
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return &Engine{
		log:        cfg.Logger,
		cfg:        cfg,
		statusPool: pond.NewResultPool[int64](cfg.StatusWorkers),
	}, nil
}

// Close stops the worker pool after in-flight count queries finish.
func (e *Engine) Close() {
	e.statusPool.StopAndWait()
}

// ClearCache drops every cached result.
func (e *Engine) ClearCache() {
	e.cfg.Cache.Clear()
	e.log.Info("engine: cache cleared")
}

// Available reports whether the store can currently serve queries.
func (e *Engine) Available() bool {
	return e.cfg.Store.Available()
}

// Resolve answers one request. It never panics and never returns an error; every failure is an
// Outcome kind.
func (e *Engine) Resolve(ctx context.Context, req Request) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("engine: panic during resolution", "intent", req.Intent, "panic", r)
			out = Outcome{Kind: KindQueryFailed, Intent: req.Intent, Err: fmt.Sprint(r)}
		}
		out.ResolvedAt = e.cfg.Clock.Now()
		metrics.Resolutions.WithLabelValues(string(out.Intent), string(out.Kind)).Inc()
	}()

	switch req.Intent {
	case rollout.IntentUnsupported:
		return Outcome{Kind: KindUnsupported, Intent: req.Intent, Supported: rollout.SupportedIntents()}
	case rollout.IntentTotalPorts, rollout.IntentPorts, rollout.IntentDeliveredAddresses, rollout.IntentObjectsStatus:
	default:
		return Outcome{Kind: KindNone, Intent: rollout.IntentNone}
	}

	if !e.cfg.Store.Available() {
		e.log.Warn("engine: store unavailable", "intent", req.Intent)
		return Outcome{Kind: KindUnavailable, Intent: req.Intent}
	}

	switch req.Intent {
	case rollout.IntentTotalPorts:
		return e.resolveTotalPorts(ctx)
	case rollout.IntentPorts:
		return e.resolvePorts(ctx, req.Ports)
	case rollout.IntentDeliveredAddresses:
		return e.resolveAddresses(ctx, req.Address)
	default:
		return e.resolveObjectsStatus(ctx)
	}
}

func (e *Engine) resolveTotalPorts(ctx context.Context) Outcome {
	out := Outcome{Intent: rollout.IntentTotalPorts}

	total, cached, err := lookup(ctx, e, TotalPortsKey(), func(ctx context.Context) (int64, error) {
		return e.cfg.Store.Scalar(ctx, query.TotalPorts())
	})
	if err != nil {
		return e.failed(out, err)
	}

	out.Cached = cached
	out.Ports = &rollout.PortsResult{Total: total}
	out.Kind = KindTotalPorts
	if total == 0 {
		out.Kind = KindNoData
	}
	return out
}

func (e *Engine) resolvePorts(ctx context.Context, params *rollout.PortsParams) Outcome {
	out := Outcome{Intent: rollout.IntentPorts}
	if params == nil {
		return e.malformed(out, fmt.Errorf("ports parameters are missing"))
	}
	p, err := params.Normalize()
	if err != nil {
		return e.malformed(out, err)
	}
	out.PortsParams = &p

	result, cached, err := lookup(ctx, e, PortsKey(p), func(ctx context.Context) (rollout.PortsResult, error) {
		stmt := query.Ports(p)
		if !p.GroupBy.Grouped() {
			total, err := e.cfg.Store.Scalar(ctx, stmt)
			return rollout.PortsResult{Total: total}, err
		}
		rows, err := e.cfg.Store.Ports(ctx, stmt)
		return rollout.PortsResult{Grouped: true, Rows: rows}, err
	})
	if err != nil {
		return e.failed(out, err)
	}

	// Cached rows are shared; hand out a copy.
	result.Rows = slices.Clone(result.Rows)
	out.Cached = cached
	out.Ports = &result
	out.Kind = KindPorts
	if result.Empty() {
		out.Kind = KindNoData
	}
	return out
}

func (e *Engine) resolveAddresses(ctx context.Context, params *rollout.AddressParams) Outcome {
	out := Outcome{Intent: rollout.IntentDeliveredAddresses}
	if params == nil {
		return e.malformed(out, fmt.Errorf("address parameters are missing"))
	}
	p, err := params.Normalize()
	if err != nil {
		return e.malformed(out, err)
	}
	out.AddressParams = &p

	fetch := func(ctx context.Context) ([]rollout.DeliveredAddress, error) {
		return e.cfg.Store.DeliveredAddresses(ctx, query.Addresses(p, false))
	}

	var rows []rollout.DeliveredAddress
	if p.HasSearch() {
		rows, err = fetch(ctx)
	} else {
		rows, out.Cached, err = lookup(ctx, e, AddressesKey(p), fetch)
	}
	if err != nil {
		return e.failed(out, err)
	}

	result := &rollout.AddressResult{Rows: slices.Clone(rows)}
	out.Addresses = result
	if len(rows) > 0 {
		out.Kind = KindAddresses
		return out
	}
	if !p.HasSearch() {
		out.Kind = KindNotFound
		return out
	}

	// The address may exist in another state. Months are dropped: status is current, not
	// historical.
	fallback := rollout.AddressParams{Locality: p.Locality, AddressSearch: p.AddressSearch}
	metrics.AddressFallbacks.Inc()
	e.log.Debug("engine: address not delivered, looking up current status", "search", p.AddressSearch, "locality", p.Locality)

	statuses, err := e.cfg.Store.AddressStatuses(ctx, query.Addresses(fallback, true))
	if err != nil {
		return e.failed(out, err)
	}
	result.FallbackAttempted = true
	result.NotFoundRows = statuses
	if len(statuses) == 0 {
		out.Kind = KindNotFound
		return out
	}
	out.Kind = KindAddressStatus
	return out
}

func (e *Engine) resolveObjectsStatus(ctx context.Context) Outcome {
	out := Outcome{Intent: rollout.IntentObjectsStatus}

	counts, cached, err := lookup(ctx, e, ObjectsStatusKey(), func(ctx context.Context) (rollout.ObjectsStatusCounts, error) {
		group := e.statusPool.NewGroupContext(ctx)
		for _, stmt := range []query.Statement{query.ObjectsDelivered(), query.ObjectsInProgress(), query.ObjectsExcluded()} {
			group.SubmitErr(func() (int64, error) {
				return e.cfg.Store.Scalar(ctx, stmt)
			})
		}
		results, err := group.Wait()
		if err != nil {
			return rollout.ObjectsStatusCounts{}, err
		}
		return rollout.ObjectsStatusCounts{
			Delivered:  results[0],
			InProgress: results[1],
			Excluded:   results[2],
		}, nil
	})
	if err != nil {
		return e.failed(out, err)
	}

	out.Cached = cached
	out.Objects = &counts
	out.Kind = KindObjectsStatus
	if counts.Total() == 0 {
		out.Kind = KindStatusUndetermined
	}
	return out
}

// lookup returns the cached value for key or fetches and caches it. Nothing is cached when fetch
// fails.
func lookup[T any](ctx context.Context, e *Engine, key Key, fetch func(context.Context) (T, error)) (T, bool, error) {
	if v, ok := e.cfg.Cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			metrics.CacheLookups.WithLabelValues(string(key.Intent), "hit").Inc()
			e.log.Debug("engine: cache hit", "key", key)
			return typed, true, nil
		}
	}
	metrics.CacheLookups.WithLabelValues(string(key.Intent), "miss").Inc()

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	e.cfg.Cache.Set(key, v, e.cfg.CacheTTL)
	return v, false, nil
}

func (e *Engine) failed(out Outcome, err error) Outcome {
	e.log.Error("engine: query failed", "intent", out.Intent, "error", err)
	out.Kind = KindQueryFailed
	out.Err = err.Error()
	out.Ports, out.Addresses, out.Objects = nil, nil, nil
	return out
}

func (e *Engine) malformed(out Outcome, err error) Outcome {
	e.log.Warn("engine: malformed parameters", "intent", out.Intent, "error", err)
	out.Kind = KindMalformedParameters
	out.Err = err.Error()
	return out
}
