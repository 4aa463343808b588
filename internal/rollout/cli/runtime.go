package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/malbeclabs/rollout-analytics/internal/rollout/config"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/engine"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/format"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/store"
	"github.com/spf13/cobra"
)

// runtime carries the per-invocation wiring shared by every subcommand.
type runtime struct {
	log    *slog.Logger
	env    config.Env
	engine *engine.Engine
	store  *store.Store
}

// withRuntime loads configuration, opens the store and runs fn with a ready engine. A store that
// cannot be opened is left unavailable so that fn still produces an outcome.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	log := newLogger(verbose)

	env, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.New(store.Config{
		Logger:           log,
		DatabaseURL:      env.DatabaseURL,
		MaxConns:         env.DBMaxConns,
		MinConns:         env.DBMinConns,
		AcquireTimeout:   env.AcquireTimeout,
		StatementTimeout: env.StatementTimeout,
		ConnectTimeout:   env.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	if err := st.Open(ctx); err != nil && !errors.Is(err, store.ErrUnavailable) {
		log.Warn("store: analytics disabled", "error", err)
	}

	eng, err := engine.New(engine.Config{
		Logger:        log,
		Store:         st,
		CacheTTL:      env.CacheTTL,
		StatusWorkers: env.StatusWorkers,
	})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer eng.Close()

	return fn(ctx, &runtime{log: log, env: env, engine: eng, store: st})
}

// printOutcome writes the outcome as markdown, or as JSON under --json. Failed outcomes are returned as
// errors after printing so the process exits non-zero.
func printOutcome(cmd *cobra.Command, out engine.Outcome) error {
	asJSON, err := cmd.Root().PersistentFlags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode outcome: %w", err)
		}
	} else {
		fmt.Fprintln(w, format.Markdown(out))
	}

	if out.Kind.Failed() {
		return fmt.Errorf("analytics query %s: %s", out.Intent, out.Kind)
	}
	return nil
}
