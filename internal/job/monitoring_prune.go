package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// MonitoringPruneJob drops monitoring samples past the retention window. At a
// three second cadence the table grows by almost thirty thousand rows a day.
type MonitoringPruneJob struct {
	Monitoring service.MonitoringService
	Retention  time.Duration
	Logger     *slog.Logger
}

// NewMonitoringPruneJob creates the prune job.
func NewMonitoringPruneJob(monitoring service.MonitoringService, retention time.Duration, logger *slog.Logger) *MonitoringPruneJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitoringPruneJob{Monitoring: monitoring, Retention: retention, Logger: logger}
}

// Name implements Runnable.
func (j *MonitoringPruneJob) Name() string {
	return "monitoring.prune"
}

// Run implements Runnable.
func (j *MonitoringPruneJob) Run(ctx context.Context) error {
	if j == nil || j.Monitoring == nil {
		return fmt.Errorf("monitoring prune job dependencies not configured")
	}
	deleted, err := j.Monitoring.Prune(ctx, j.Retention)
	if err != nil {
		return fmt.Errorf("monitoring prune job: %w", err)
	}
	if deleted > 0 {
		j.Logger.Debug("pruned monitoring samples", "deleted", deleted)
	}
	return nil
}
