package sink

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements creating the telemetry schema.
const Schema = `
-- Usage telemetry, one row per intercepted SDK call
CREATE TABLE IF NOT EXISTS usage_records (
    id TEXT PRIMARY KEY,
    recorded_at TIMESTAMP NOT NULL,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    input_tokens INTEGER NOT NULL,
    output_tokens INTEGER NOT NULL,
    route TEXT
);

-- Handler diagnostics, one row per handled call
CREATE TABLE IF NOT EXISTS inspections (
    id TEXT PRIMARY KEY,
    recorded_at TIMESTAMP NOT NULL,
    operation TEXT NOT NULL,
    kind TEXT NOT NULL,
    duration_ms REAL NOT NULL,
    attack_detected BOOLEAN NOT NULL,
    blocked BOOLEAN NOT NULL,
    has_context BOOLEAN NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_usage_recorded_at ON usage_records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_usage_provider ON usage_records(provider);
CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_records(model);
CREATE INDEX IF NOT EXISTS idx_inspections_recorded_at ON inspections(recorded_at);
CREATE INDEX IF NOT EXISTS idx_inspections_operation ON inspections(operation);
`

// InsertSchemaVersion records the schema version on first initialization.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
