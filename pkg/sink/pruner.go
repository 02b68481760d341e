package sink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/argus/pkg/config"
)

// Pruner enforces the retention window on a SQLite sink.
type Pruner struct {
	store     *SQLiteSink
	config    config.SQLiteSinkConfig
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a retention pruner for the given sink.
func NewPruner(store *SQLiteSink, cfg config.SQLiteSinkConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pruner{
		store:  store,
		config: cfg,
		logger: logger.With("component", "sink.retention"),
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes records older than the retention window. A zero
// RetentionDays keeps records forever. Returns the number of rows deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, nothing to prune")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune failed: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("pruned telemetry records",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	} else {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
		)
	}

	return deleted, nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
