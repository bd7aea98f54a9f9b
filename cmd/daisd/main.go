// Command daisd runs the judging service: it wires a store, the scoring
// engine, and the HTTP API together and serves until interrupted.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/venharis/dais/infrastructure/httpapi"
	"github.com/venharis/dais/infrastructure/middleware"
	"github.com/venharis/dais/infrastructure/policies"
	"github.com/venharis/dais/infrastructure/storage/memory"
	"github.com/venharis/dais/infrastructure/storage/sqlite"
	"github.com/venharis/dais/internal/application"
	"github.com/venharis/dais/internal/config"
	"github.com/venharis/dais/pkg/logger"
)

// HTTP server timeouts.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (default: $DAIS_CONFIG)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Defaults, then file, then DAIS_ environment variables.
	cfg := config.Default()
	loader := config.NewLoader(*configPath)
	if err := loader.Load(ctx, cfg); err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		os.Stderr.WriteString("invalid config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Re-apply the log level when the config file changes, so verbosity
	// can be raised on a live instance.
	stopWatch, err := loader.Watch(ctx, cfg, func(any) {
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			log.Warn(ctx, "ignoring invalid log_level from config reload",
				logger.String("log_level", cfg.LogLevel))
		}
	})
	if err != nil {
		log.Warn(ctx, "config watch unavailable", logger.Error(err))
	} else {
		defer stopWatch()
	}

	stores, closeStore, err := openStores(cfg.Storage)
	if err != nil {
		log.Error(ctx, "failed to open storage", logger.Error(err))
		os.Exit(1)
	}
	defer closeStore()

	// Selection policies carry tracing in the daemon; library users get
	// the plain registry.
	registry := policies.NewRegistry()
	_ = registry.Register(policies.ModeTopK, middleware.TracePolicyFactory(policies.NewTopKFromParams))
	_ = registry.Register(policies.ModePerJudge, middleware.TracePolicyFactory(policies.NewPerJudgeFromParams))

	engine, err := application.NewEngine(stores, registry, application.Options{
		Logger:               log,
		Metrics:              middleware.NewPrometheusMetrics(),
		Observer:             middleware.NewOTelComputeObserver(),
		RecomputeConcurrency: cfg.Compute.RecomputeConcurrency,
	})
	if err != nil {
		log.Error(ctx, "failed to build engine", logger.Error(err))
		os.Exit(1)
	}

	api := httpapi.NewServer(engine, httpapi.IngestStores{
		Rounds:      stores.Rounds,
		Criteria:    stores.Criteria,
		Evaluations: stores.Evaluations,
	}, log, httpapi.ServerConfig{
		ComputeRatePerMinute: cfg.Compute.RatePerMinute,
		ComputeRateBurst:     cfg.Compute.RateBurst,
	})

	mux := http.NewServeMux()
	api.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("storage", cfg.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// openStores opens the configured backend and returns it as the engine's
// store bundle together with a close function.
func openStores(cfg config.StorageConfig) (application.Stores, func(), error) {
	switch cfg.Backend {
	case "memory":
		store := memory.NewStore()
		return application.Stores{
			Rounds:      store,
			Criteria:    store,
			Evaluations: store,
			Results:     store,
			Assignments: store,
		}, func() {}, nil
	default:
		store, err := sqlite.Open(cfg.Path)
		if err != nil {
			return application.Stores{}, nil, err
		}
		return application.Stores{
			Rounds:      store,
			Criteria:    store,
			Evaluations: store,
			Results:     store,
			Assignments: store,
		}, func() { _ = store.Close() }, nil
	}
}
