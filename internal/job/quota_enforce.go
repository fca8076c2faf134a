package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// QuotaEnforceJob runs the quota enforcement pass.
type QuotaEnforceJob struct {
	Enforcer service.QuotaEnforcer
	Logger   *slog.Logger
}

// NewQuotaEnforceJob creates the enforcement job.
func NewQuotaEnforceJob(enforcer service.QuotaEnforcer, logger *slog.Logger) *QuotaEnforceJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuotaEnforceJob{Enforcer: enforcer, Logger: logger}
}

// Name implements Runnable.
func (j *QuotaEnforceJob) Name() string {
	return "quota.enforce"
}

// Run implements Runnable.
func (j *QuotaEnforceJob) Run(ctx context.Context) error {
	if j == nil || j.Enforcer == nil {
		return fmt.Errorf("quota enforce job dependencies not configured")
	}
	result, err := j.Enforcer.Enforce(ctx)
	if err != nil {
		return fmt.Errorf("quota enforce job: %w", err)
	}
	if result.Disconnected > 0 {
		j.Logger.Info("quota enforcement pass", "checked", result.Checked, "disconnected", result.Disconnected)
	} else {
		j.Logger.Debug("quota enforcement pass", "checked", result.Checked)
	}
	return nil
}
