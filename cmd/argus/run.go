package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/argus/pkg/catalog"
	"mercator-hq/argus/pkg/config"
	"mercator-hq/argus/pkg/instrument"
	"mercator-hq/argus/pkg/locator"
	"mercator-hq/argus/pkg/sink"
	"mercator-hq/argus/pkg/telemetry/logging"
	"mercator-hq/argus/pkg/telemetry/metrics"
	"mercator-hq/argus/pkg/telemetry/tracing"
)

var runFlags struct {
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the diagnostic agent",
	Long: `Run the agent in diagnostic mode: load the hook catalog, resolve every
hook through the member locator, report resolution status, and serve the
agent's metrics endpoint.

Interception itself is installed by the embedding host through the
instrument package; the run command verifies that the catalog resolves in
the current environment.

Examples:
  # Run with default config
  argus run

  # Run with custom config
  argus run --config /etc/argus/config.yaml

  # Validate config and catalog without starting
  argus run --dry-run`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and catalog without starting")
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	slog.SetDefault(logger)

	cat, gitSource, err := loadCatalog(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Printf("✓ Configuration valid (%d hooks)\n", len(cat.Hooks))
		return nil
	}

	fmt.Printf("Argus v%s\n", Version)
	fmt.Printf("✓ Configuration loaded from %s\n", cfgFile)
	fmt.Printf("✓ Catalog loaded (%d hooks)\n", len(cat.Hooks))

	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)

	tracer, err := tracing.New(cfg.Telemetry.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer tracer.Shutdown(context.Background())

	recordSink, cleanup, err := buildSink(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	loc := locator.New(logger)
	agent := instrument.New(loc, recordSink, instrument.StaticContext{},
		instrument.WithLogger(logger),
		instrument.WithMetrics(collector),
		instrument.WithTracer(tracer),
		instrument.WithEnabled(cfg.Agent.Enabled),
		instrument.WithDefaultProvider(cfg.Agent.DefaultProvider),
	)

	reportResolution(agent, loc, cat, collector)
	if !cfg.Agent.Enabled {
		fmt.Println("✓ Interception disabled (agent.enabled: false); hooks resolved for validation only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Catalog.Watch && cfg.Catalog.Source == "file" {
		watcher, err := catalog.NewWatcher(cfg.Catalog.Path, logger)
		if err != nil {
			logger.Warn("failed to start catalog watcher", "error", err)
		} else {
			defer watcher.Stop()
			go func() {
				_ = watcher.Watch(ctx, func() error {
					reloaded, err := catalog.Load(cfg.Catalog.Path)
					if err != nil {
						return err
					}
					loc.ClearCache()
					reportResolution(agent, loc, reloaded, collector)
					return nil
				})
			}()
			fmt.Printf("✓ Watching catalog: %s\n", cfg.Catalog.Path)
		}
	}

	if gitSource != nil && cfg.Catalog.Git.PollInterval > 0 {
		go pollCatalog(ctx, cfg.Catalog.Git.PollInterval, gitSource.Sync, func(reloaded *catalog.Catalog) {
			loc.ClearCache()
			reportResolution(agent, loc, reloaded, collector)
		}, logger)
		fmt.Printf("✓ Syncing catalog repository every %s\n", cfg.Catalog.Git.PollInterval)
	}

	if collector.Registry() != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		srv := &http.Server{
			Addr:              cfg.Telemetry.Metrics.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		fmt.Printf("✓ Metrics: http://%s%s\n",
			cfg.Telemetry.Metrics.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	fmt.Println("\nPress Ctrl+C to stop")
	<-ctx.Done()

	fmt.Println("\nShutting down")
	return nil
}

// loadCatalog loads the hook catalog from the configured source. For the git
// source it also returns the source itself so the caller can keep syncing on
// the configured poll interval.
func loadCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*catalog.Catalog, *catalog.GitSource, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.Catalog.Source {
	case "git":
		source, err := catalog.NewGitSource(cfg.Catalog.Git, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create git catalog source: %w", err)
		}
		cat, err := source.Sync(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to sync catalog repository: %w", err)
		}
		return cat, source, nil
	case "file", "":
		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		return cat, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported catalog source: %s", cfg.Catalog.Source)
	}
}

// pollCatalog periodically re-syncs the catalog source and applies the result
// until the context is cancelled. Sync failures are logged and polling
// continues with the previous catalog in effect.
func pollCatalog(ctx context.Context, interval time.Duration, sync func(context.Context) (*catalog.Catalog, error), apply func(*catalog.Catalog), logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reloaded, err := sync(ctx)
			if err != nil {
				logger.Error("catalog sync failed", "error", err)
				continue
			}
			apply(reloaded)
			logger.Info("catalog synced", "hooks", len(reloaded.Hooks))
		}
	}
}

// dryInterceptor accepts attachments without installing anything. The run
// command uses it to exercise the full install path in environments where
// no host interceptor is present.
type dryInterceptor struct{}

func (dryInterceptor) Attach(*locator.MemberHandle, instrument.Callback) error { return nil }

// reportResolution installs every hook against a dry interceptor and
// reports the outcome.
func reportResolution(agent *instrument.Agent, loc *locator.Locator, cat *catalog.Catalog, collector *metrics.Collector) {
	installed := agent.Install(cat.Hooks, dryInterceptor{})

	stats := loc.Stats()
	collector.UpdateCacheSize("containers", stats.ContainersCached)
	collector.UpdateCacheSize("types", stats.TypesCached)

	fmt.Printf("✓ Hooks resolved: %d/%d\n", installed, len(cat.Hooks))
}

// buildSink constructs the configured sink backend. The returned cleanup
// stops retention and closes the backend.
func buildSink(cfg *config.Config, logger *slog.Logger) (instrument.Sink, func(), error) {
	switch cfg.Sink.Backend {
	case "sqlite":
		store, err := sink.NewSQLiteSink(cfg.Sink.SQLite, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create sqlite sink: %w", err)
		}

		pruner := sink.NewPruner(store, cfg.Sink.SQLite, logger)
		if cfg.Sink.SQLite.PruneSchedule != "" {
			if err := pruner.Start(context.Background()); err != nil {
				logger.Warn("failed to start retention scheduler", "error", err)
			} else if next := pruner.NextPruning(); next != nil {
				logger.Debug("retention scheduler started", "next_pruning", next)
			}
		}

		cleanup := func() {
			pruner.Stop()
			if err := store.Close(); err != nil {
				logger.Error("failed to close sqlite sink", "error", err)
			}
		}
		fmt.Printf("✓ Sink: sqlite (%s)\n", cfg.Sink.SQLite.Path)
		return store, cleanup, nil
	case "log", "":
		fmt.Println("✓ Sink: log")
		return sink.NewLogSink(logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported sink backend: %s", cfg.Sink.Backend)
	}
}
