package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks a configuration for consistency. It returns the first
// problem found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	switch cfg.Catalog.Source {
	case "file":
		if cfg.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for the file source")
		}
	case "git":
		if cfg.Catalog.Git.Repository == "" {
			return fmt.Errorf("catalog.git.repository is required for the git source")
		}
		if cfg.Catalog.Git.Branch == "" {
			return fmt.Errorf("catalog.git.branch cannot be empty")
		}
		if cfg.Catalog.Git.PollInterval <= 0 {
			return fmt.Errorf("catalog.git.poll_interval must be positive")
		}
	default:
		return fmt.Errorf("unknown catalog.source %q (want \"file\" or \"git\")", cfg.Catalog.Source)
	}

	switch cfg.Sink.Backend {
	case "log":
	case "sqlite":
		if cfg.Sink.SQLite.Path == "" {
			return fmt.Errorf("sink.sqlite.path is required for the sqlite backend")
		}
		if cfg.Sink.SQLite.RetentionDays < 0 {
			return fmt.Errorf("sink.sqlite.retention_days cannot be negative")
		}
		if cfg.Sink.SQLite.PruneSchedule != "" {
			if _, err := cron.ParseStandard(cfg.Sink.SQLite.PruneSchedule); err != nil {
				return fmt.Errorf("invalid sink.sqlite.prune_schedule %q: %w", cfg.Sink.SQLite.PruneSchedule, err)
			}
		}
	default:
		return fmt.Errorf("unknown sink.backend %q (want \"sqlite\" or \"log\")", cfg.Sink.Backend)
	}

	switch strings.ToLower(cfg.Telemetry.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown logging level %q", cfg.Telemetry.Logging.Level)
	}

	switch strings.ToLower(cfg.Telemetry.Logging.Format) {
	case "", "json", "text", "console":
	default:
		return fmt.Errorf("unknown logging format %q", cfg.Telemetry.Logging.Format)
	}

	if cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.ListenAddress == "" {
		return fmt.Errorf("telemetry.metrics.listen_address is required when metrics are enabled")
	}

	if cfg.Telemetry.Tracing.Enabled {
		switch cfg.Telemetry.Tracing.Exporter {
		case "otlp", "jaeger", "zipkin":
		default:
			return fmt.Errorf("unknown tracing exporter %q", cfg.Telemetry.Tracing.Exporter)
		}
		if cfg.Telemetry.Tracing.Endpoint == "" {
			return fmt.Errorf("telemetry.tracing.endpoint is required when tracing is enabled")
		}
		if cfg.Telemetry.Tracing.Sampler == "ratio" &&
			(cfg.Telemetry.Tracing.SampleRatio < 0 || cfg.Telemetry.Tracing.SampleRatio > 1) {
			return fmt.Errorf("telemetry.tracing.sample_ratio must be within [0, 1]")
		}
	}

	return nil
}
