package job

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

type sweepSessions struct {
	repository.SessionRepository
	stale  []*repository.Session
	closed map[int64]string
}

func (s *sweepSessions) StaleActive(_ context.Context, _ int64) ([]*repository.Session, error) {
	return s.stale, nil
}

func (s *sweepSessions) Close(_ context.Context, id int64, _ int64, cause string) error {
	s.closed[id] = cause
	return nil
}

func TestSessionSweepClosesStaleAsIdleTimeout(t *testing.T) {
	sessions := &sweepSessions{
		stale: []*repository.Session{
			{ID: 1, AcctSessionID: "sess-001", Username: "jdoe"},
			{ID: 2, AcctSessionID: "sess-002", Username: "asmith"},
		},
		closed: make(map[int64]string),
	}
	sweep := NewSessionSweepJob(sessions, 15*time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, sweep.Run(context.Background()))

	assert.Len(t, sessions.closed, 2)
	assert.Equal(t, "Idle-Timeout", sessions.closed[1])
	assert.Equal(t, "Idle-Timeout", sessions.closed[2])
}
