package config

import "time"

// Config is the root configuration structure for the Argus agent.
type Config struct {
	// Agent contains instrumentation behavior settings.
	Agent AgentConfig `yaml:"agent"`

	// Catalog describes where the hook catalog comes from.
	Catalog CatalogConfig `yaml:"catalog"`

	// Sink selects and configures the telemetry sink backend.
	Sink SinkConfig `yaml:"sink"`

	// Telemetry contains the agent's own observability settings: logging,
	// metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// AgentConfig contains instrumentation behavior settings.
type AgentConfig struct {
	// Enabled toggles interception entirely. When false the agent still
	// resolves the catalog (useful for validation) but attaches nothing.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// DefaultProvider is recorded when a hook carries no provider name
	// and the container name is empty. Default: "unknown"
	DefaultProvider string `yaml:"default_provider"`
}

// CatalogConfig describes where the hook catalog comes from.
type CatalogConfig struct {
	// Source is the catalog source kind: "file" or "git".
	// Default: "file"
	Source string `yaml:"source"`

	// Path is the catalog file path for the file source.
	// Default: "catalog.yaml"
	Path string `yaml:"path"`

	// Watch reloads the catalog when the file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// Git configures the git source.
	Git GitCatalogConfig `yaml:"git"`
}

// GitCatalogConfig configures catalog distribution from a git repository.
type GitCatalogConfig struct {
	// Repository is the clone URL.
	Repository string `yaml:"repository"`

	// Branch is the branch to track. Default: "main"
	Branch string `yaml:"branch"`

	// Path is the catalog file path inside the repository.
	// Default: "catalog.yaml"
	Path string `yaml:"path"`

	// LocalPath is the working copy location.
	// Default: a directory under the OS temp directory.
	LocalPath string `yaml:"local_path"`

	// PollInterval is how often the repository is synced.
	// Default: 5m
	PollInterval time.Duration `yaml:"poll_interval"`
}

// SinkConfig selects and configures the telemetry sink backend.
type SinkConfig struct {
	// Backend is "sqlite" or "log". Default: "log"
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteSinkConfig `yaml:"sqlite"`
}

// SQLiteSinkConfig configures the sqlite telemetry sink.
type SQLiteSinkConfig struct {
	// Path is the database file path. Default: "data/telemetry.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the connection pool size. Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the idle connection count. Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait on a locked database. Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// RetentionDays is how long records are kept before pruning.
	// Zero disables pruning. Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Empty disables the scheduler. Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains the agent's own observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json", "text", or "console". Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records. Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics exposure.
type MetricsConfig struct {
	// Enabled toggles metric collection. Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the metrics endpoint is served when the
	// agent runs standalone. Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the metrics endpoint path. Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace and Subsystem prefix every metric name.
	// Defaults: "argus", "agent"
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled toggles tracing. Default: false
	Enabled bool `yaml:"enabled"`

	// Exporter is "otlp", "jaeger", or "zipkin". Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the exporter endpoint (host:port for OTLP gRPC).
	Endpoint string `yaml:"endpoint"`

	// ServiceName identifies this agent in traces. Default: "argus"
	ServiceName string `yaml:"service_name"`

	// Sampler is "always", "never", or "ratio". Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio applies to the "ratio" sampler. Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS on the OTLP connection. Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds exporter calls. Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
