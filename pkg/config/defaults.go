package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values applied before the configuration file is read. Unmarshaling
// over a defaulted Config means absent keys keep their defaults, including
// booleans that default to true.
const (
	DefaultCatalogPath     = "catalog.yaml"
	DefaultCatalogBranch   = "main"
	DefaultSinkBackend     = "log"
	DefaultSQLitePath      = "data/telemetry.db"
	DefaultRetentionDays   = 30
	DefaultPruneSchedule   = "0 3 * * *"
	DefaultMetricsAddress  = "127.0.0.1:9464"
	DefaultMetricsPath     = "/metrics"
	DefaultProviderName    = "unknown"
	DefaultTracingExporter = "otlp"
	DefaultServiceName     = "argus"
)

// Default returns a fully defaulted configuration.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Enabled:         true,
			DefaultProvider: DefaultProviderName,
		},
		Catalog: CatalogConfig{
			Source: "file",
			Path:   DefaultCatalogPath,
			Git: GitCatalogConfig{
				Branch:       DefaultCatalogBranch,
				Path:         DefaultCatalogPath,
				LocalPath:    filepath.Join(os.TempDir(), "argus-catalog"),
				PollInterval: 5 * time.Minute,
			},
		},
		Sink: SinkConfig{
			Backend: DefaultSinkBackend,
			SQLite: SQLiteSinkConfig{
				Path:          DefaultSQLitePath,
				MaxOpenConns:  10,
				MaxIdleConns:  5,
				WALMode:       true,
				BusyTimeout:   5 * time.Second,
				RetentionDays: DefaultRetentionDays,
				PruneSchedule: DefaultPruneSchedule,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
			Metrics: MetricsConfig{
				Enabled:       true,
				ListenAddress: DefaultMetricsAddress,
				Path:          DefaultMetricsPath,
				Namespace:     "argus",
				Subsystem:     "agent",
			},
			Tracing: TracingConfig{
				Exporter:    DefaultTracingExporter,
				ServiceName: DefaultServiceName,
				Sampler:     "ratio",
				SampleRatio: 0.1,
				Timeout:     10 * time.Second,
			},
		},
	}
}
