package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/malbeclabs/rollout-analytics/internal/rollout/classify"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/config"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/engine"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/metrics"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/server"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/store"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultListenAddr        = "0.0.0.0:8080"
	defaultMetricsAddr       = "0.0.0.0:9090"
	defaultReadHeaderTimeout = 30 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	listenAddrFlag := flag.String("listen-addr", defaultListenAddr, "HTTP API listen address (or set ROLLOUT_LISTEN_ADDR env var)")
	metricsAddrFlag := flag.String("metrics-addr", defaultMetricsAddr, "Address to listen on for prometheus metrics (set to empty string to disable)")
	readHeaderTimeoutFlag := flag.Duration("read-header-timeout", defaultReadHeaderTimeout, "HTTP read header timeout")
	shutdownTimeoutFlag := flag.Duration("shutdown-timeout", defaultShutdownTimeout, "Server shutdown timeout")
	flag.Parse()

	if envListenAddr := os.Getenv("ROLLOUT_LISTEN_ADDR"); envListenAddr != "" {
		*listenAddrFlag = envListenAddr
	}

	log := newLogger(*verboseFlag)

	env, err := config.Load()
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigCh
		log.Info("server: received signal", "signal", sig.String())
		cancel()
	}()

	metricsServerErrCh := make(chan error, 1)
	if *metricsAddrFlag != "" {
		metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
		go func() {
			listener, err := net.Listen("tcp", *metricsAddrFlag)
			if err != nil {
				log.Error("failed to start prometheus metrics server listener", "error", err)
				metricsServerErrCh <- err
				return
			}
			log.Info("prometheus metrics server listening", "address", listener.Addr().String())
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, mux); err != nil {
				log.Error("failed to start prometheus metrics server", "error", err)
				metricsServerErrCh <- err
				return
			}
		}()
	}

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

	// Analytics stay disabled rather than failing startup when the database is unreachable.
	if err := st.Open(ctx); err != nil && !errors.Is(err, store.ErrUnavailable) {
		log.Error("store: analytics disabled", "error", err)
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

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		log.Warn("ANTHROPIC_API_KEY is not set; every question will get the fallback answer")
	}
	classifier, err := classify.New(classify.Config{
		Logger:  log,
		LLM:     classify.NewAnthropicLLMClient(log, anthropic.Model(env.AnthropicModel), env.AnthropicMaxTokens),
		Timeout: env.ClassifyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create classifier: %w", err)
	}

	httpListener, err := net.Listen("tcp", *listenAddrFlag)
	if err != nil {
		return fmt.Errorf("failed to create HTTP listener: %w", err)
	}
	defer httpListener.Close()

	srv, err := server.New(server.Config{
		Logger:            log,
		HTTPListener:      httpListener,
		Resolver:          eng,
		Classifier:        classifier,
		AllowedOrigins:    env.AllowedOrigins,
		ReadHeaderTimeout: *readHeaderTimeoutFlag,
		ShutdownTimeout:   *shutdownTimeoutFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("server: shutting down", "reason", ctx.Err())
		return <-serverErrCh
	case err := <-serverErrCh:
		log.Error("server: server error causing shutdown", "error", err)
		return err
	case err := <-metricsServerErrCh:
		log.Error("server: metrics server error causing shutdown", "error", err)
		return err
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
