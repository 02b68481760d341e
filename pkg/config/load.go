package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is unmarshaled over a fully defaulted configuration, so absent
// keys keep their defaults. The result is validated before being returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides of the form ARGUS_SECTION_FIELD. Environment
// variables always take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides overrides configuration fields from ARGUS_* environment
// variables.
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setBool("ARGUS_AGENT_ENABLED", &cfg.Agent.Enabled)
	setString("ARGUS_CATALOG_SOURCE", &cfg.Catalog.Source)
	setString("ARGUS_CATALOG_PATH", &cfg.Catalog.Path)
	setBool("ARGUS_CATALOG_WATCH", &cfg.Catalog.Watch)
	setString("ARGUS_CATALOG_GIT_REPOSITORY", &cfg.Catalog.Git.Repository)
	setString("ARGUS_CATALOG_GIT_BRANCH", &cfg.Catalog.Git.Branch)
	setString("ARGUS_SINK_BACKEND", &cfg.Sink.Backend)
	setString("ARGUS_SINK_SQLITE_PATH", &cfg.Sink.SQLite.Path)
	setString("ARGUS_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("ARGUS_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("ARGUS_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setString("ARGUS_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	setBool("ARGUS_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	setString("ARGUS_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
}
