package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mercator-hq/argus/pkg/config"
	"mercator-hq/argus/pkg/instrument"
)

// SQLiteSink persists records to a SQLite database. It implements
// instrument.Sink; write failures are logged and swallowed because the sink
// contract gives the handler no error channel.
type SQLiteSink struct {
	db     *sql.DB
	config config.SQLiteSinkConfig
	logger *slog.Logger
}

// NewSQLiteSink opens (or creates) the database, applies the schema, and
// verifies the schema version.
func NewSQLiteSink(cfg config.SQLiteSinkConfig, logger *slog.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sink.sqlite")

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &SQLiteSink{
		db:     db,
		config: cfg,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite sink initialized",
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up pragmas, the schema, and the version row.
func (s *SQLiteSink) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		_, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds()))
		if err != nil {
			return fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("failed to insert schema version: %w", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}

	return nil
}

// RecordUsage implements instrument.Sink.
func (s *SQLiteSink) RecordUsage(record instrument.UsageRecord) {
	route := marshalRoute(record.Route)

	_, err := s.db.Exec(`
		INSERT INTO usage_records (id, recorded_at, provider, model, input_tokens, output_tokens, route)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), time.Now().UTC(),
		record.Provider, record.Model,
		record.InputTokens, record.OutputTokens,
		route,
	)
	if err != nil {
		s.logger.Error("failed to store usage record",
			"provider", record.Provider,
			"model", record.Model,
			"error", err,
		)
	}
}

// RecordInspection implements instrument.Sink.
func (s *SQLiteSink) RecordInspection(record instrument.InspectionRecord) {
	_, err := s.db.Exec(`
		INSERT INTO inspections (id, recorded_at, operation, kind, duration_ms, attack_detected, blocked, has_context)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), time.Now().UTC(),
		record.Operation, record.Kind, record.DurationMs,
		record.AttackDetected, record.Blocked, record.HasContext,
	)
	if err != nil {
		s.logger.Error("failed to store inspection record",
			"operation", record.Operation,
			"error", err,
		)
	}
}

// CountUsage returns the number of stored usage records.
func (s *SQLiteSink) CountUsage(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usage_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count usage records: %w", err)
	}
	return count, nil
}

// CountInspections returns the number of stored inspection records.
func (s *SQLiteSink) CountInspections(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inspections").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count inspection records: %w", err)
	}
	return count, nil
}

// RecentUsage returns the most recent usage records, newest first.
func (s *SQLiteSink) RecentUsage(ctx context.Context, limit int) ([]instrument.UsageRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, model, input_tokens, output_tokens, route
		FROM usage_records ORDER BY recorded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	var records []instrument.UsageRecord
	for rows.Next() {
		var record instrument.UsageRecord
		var route sql.NullString
		if err := rows.Scan(&record.Provider, &record.Model,
			&record.InputTokens, &record.OutputTokens, &route); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		if route.Valid && route.String != "" {
			var v any
			if err := json.Unmarshal([]byte(route.String), &v); err == nil {
				record.Route = v
			}
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usage records: %w", err)
	}
	return records, nil
}

// DeleteOlderThan removes usage and inspection records recorded before the
// cutoff. Returns the total number of rows deleted.
func (s *SQLiteSink) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64

	for _, table := range []string{"usage_records", "inspections"} {
		result, err := s.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE recorded_at < ?", table), cutoff.UTC())
		if err != nil {
			return total, fmt.Errorf("failed to delete from %s: %w", table, err)
		}
		deleted, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to count deleted rows in %s: %w", table, err)
		}
		total += deleted
	}

	return total, nil
}

// Close releases the database connection.
func (s *SQLiteSink) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.logger.Info("sqlite sink closed")
	return nil
}

// marshalRoute serializes the opaque route context for storage. Routes that
// do not serialize are stored as their string rendering.
func marshalRoute(route any) string {
	if route == nil {
		return ""
	}
	data, err := json.Marshal(route)
	if err != nil {
		return fmt.Sprintf("%v", route)
	}
	return string(data)
}
