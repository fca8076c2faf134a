package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// SessionSweepJob closes sessions that stopped reporting accounting packets
// for longer than the idle timeout grace window. A NAS reboot or a lost Stop
// packet otherwise leaves sessions open forever.
type SessionSweepJob struct {
	Sessions repository.SessionRepository
	StaleFor time.Duration
	Logger   *slog.Logger
}

// NewSessionSweepJob creates the sweep job.
func NewSessionSweepJob(sessions repository.SessionRepository, staleFor time.Duration, logger *slog.Logger) *SessionSweepJob {
	if logger == nil {
		logger = slog.Default()
	}
	if staleFor <= 0 {
		staleFor = 15 * time.Minute
	}
	return &SessionSweepJob{Sessions: sessions, StaleFor: staleFor, Logger: logger}
}

// Name implements Runnable.
func (j *SessionSweepJob) Name() string {
	return "session.sweep"
}

// Run implements Runnable.
func (j *SessionSweepJob) Run(ctx context.Context) error {
	if j == nil || j.Sessions == nil {
		return fmt.Errorf("session sweep job dependencies not configured")
	}
	stale, err := j.Sessions.StaleActive(ctx, time.Now().Add(-j.StaleFor).Unix())
	if err != nil {
		return fmt.Errorf("session sweep job: %w", err)
	}

	now := time.Now().Unix()
	closed := 0
	for _, session := range stale {
		if err := j.Sessions.Close(ctx, session.ID, now, "Idle-Timeout"); err != nil {
			j.Logger.WarnContext(ctx, "stale session close failed", "session_id", session.ID, "error", err)
			continue
		}
		closed++
	}
	if closed > 0 {
		j.Logger.Info("swept stale sessions", "closed", closed)
	}
	return nil
}
