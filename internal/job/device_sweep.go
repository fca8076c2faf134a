package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// DeviceSweepJob marks devices inactive after a long silence so the console
// distinguishes current machines from ones that left campus.
type DeviceSweepJob struct {
	Devices     repository.DeviceRepository
	InactiveFor time.Duration
	Logger      *slog.Logger
}

// NewDeviceSweepJob creates the sweep job.
func NewDeviceSweepJob(devices repository.DeviceRepository, inactiveFor time.Duration, logger *slog.Logger) *DeviceSweepJob {
	if logger == nil {
		logger = slog.Default()
	}
	if inactiveFor <= 0 {
		inactiveFor = 30 * 24 * time.Hour
	}
	return &DeviceSweepJob{Devices: devices, InactiveFor: inactiveFor, Logger: logger}
}

// Name implements Runnable.
func (j *DeviceSweepJob) Name() string {
	return "device.sweep"
}

// Run implements Runnable.
func (j *DeviceSweepJob) Run(ctx context.Context) error {
	if j == nil || j.Devices == nil {
		return fmt.Errorf("device sweep job dependencies not configured")
	}
	marked, err := j.Devices.MarkInactiveBefore(ctx, time.Now().Add(-j.InactiveFor).Unix())
	if err != nil {
		return fmt.Errorf("device sweep job: %w", err)
	}
	if marked > 0 {
		j.Logger.Info("marked devices inactive", "count", marked)
	}
	return nil
}
