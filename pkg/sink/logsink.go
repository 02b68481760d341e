package sink

import (
	"log/slog"

	"mercator-hq/argus/pkg/instrument"
)

// LogSink writes records to a structured logger. It is the default backend
// for hosts that embed the agent and ship telemetry through their own log
// pipeline.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a logger-backed sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "sink.log")}
}

// RecordUsage implements instrument.Sink.
func (s *LogSink) RecordUsage(record instrument.UsageRecord) {
	s.logger.Info("ai usage",
		"provider", record.Provider,
		"model", record.Model,
		"input_tokens", record.InputTokens,
		"output_tokens", record.OutputTokens,
		"route", record.Route,
	)
}

// RecordInspection implements instrument.Sink.
func (s *LogSink) RecordInspection(record instrument.InspectionRecord) {
	s.logger.Info("ai inspection",
		"operation", record.Operation,
		"kind", record.Kind,
		"duration_ms", record.DurationMs,
		"has_context", record.HasContext,
	)
}
