package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// MonitoringSampleJob takes one dashboard reading per tick. It runs every few
// seconds, matching the console's polling cadence.
type MonitoringSampleJob struct {
	Monitoring service.MonitoringService
	Logger     *slog.Logger
}

// NewMonitoringSampleJob creates the sampling job.
func NewMonitoringSampleJob(monitoring service.MonitoringService, logger *slog.Logger) *MonitoringSampleJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitoringSampleJob{Monitoring: monitoring, Logger: logger}
}

// Name implements Runnable.
func (j *MonitoringSampleJob) Name() string {
	return "monitoring.sample"
}

// Run implements Runnable.
func (j *MonitoringSampleJob) Run(ctx context.Context) error {
	if j == nil || j.Monitoring == nil {
		return fmt.Errorf("monitoring sample job dependencies not configured")
	}
	if err := j.Monitoring.Sample(ctx); err != nil {
		return fmt.Errorf("monitoring sample job: %w", err)
	}
	return nil
}
