package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/nas"
	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// SessionService exposes live sessions to the console and lets an admin kick
// a user off the network.
type SessionService interface {
	ListActive(ctx context.Context, limit, offset int) (*SessionListResult, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*repository.Session, error)
	Disconnect(ctx context.Context, sessionID int64, actor string) error
}

// SessionListResult wraps a paginated listing.
type SessionListResult struct {
	Sessions []*repository.Session `json:"sessions"`
	Total    int64                 `json:"total"`
}

type sessionService struct {
	sessions     repository.SessionRepository
	logs         repository.DisconnectionLogRepository
	disconnector nas.Disconnector
	activity     *ActivityFeed
}

// NewSessionService assembles the session flows. The activity feed may be nil.
func NewSessionService(
	sessions repository.SessionRepository,
	logs repository.DisconnectionLogRepository,
	disconnector nas.Disconnector,
	activity *ActivityFeed,
) SessionService {
	return &sessionService{sessions: sessions, logs: logs, disconnector: disconnector, activity: activity}
}

func (s *sessionService) ListActive(ctx context.Context, limit, offset int) (*SessionListResult, error) {
	if s == nil || s.sessions == nil {
		return nil, fmt.Errorf("session service not configured")
	}
	sessions, err := s.sessions.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.sessions.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionListResult{Sessions: sessions, Total: total}, nil
}

func (s *sessionService) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*repository.Session, error) {
	return s.sessions.ListByUser(ctx, userID, limit, offset)
}

// Disconnect asks the NAS to kill the session, then closes it locally and
// records a disconnection log so the kick shows up in the console's history
// and stats. The local close happens even if the NAS call fails so the
// console reflects the admin's intent; the session sweep job reconciles any
// drift.
func (s *sessionService) Disconnect(ctx context.Context, sessionID int64, actor string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if session.StoppedAt > 0 {
		return ErrNotFound
	}

	var nasErr error
	if s.disconnector != nil {
		nasErr = s.disconnector.Disconnect(ctx, nas.DisconnectRequest{
			Username:      session.Username,
			MAC:           session.MAC,
			AcctSessionID: session.AcctSessionID,
			Reason:        "admin disconnect by " + actor,
		})
	}
	if err := s.sessions.Close(ctx, session.ID, time.Now().Unix(), "Admin-Reset"); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	// One open log per user; a second kick while the first is still open
	// would double-count the user in the stats.
	if s.logs != nil {
		if _, err := s.logs.OpenForUser(ctx, session.UserID); errors.Is(err, repository.ErrNotFound) {
			if _, err := s.logs.Create(ctx, &repository.DisconnectionLog{
				UserID:         session.UserID,
				Username:       session.Username,
				Reason:         repository.DisconnectAdmin,
				DisconnectedAt: time.Now().Unix(),
			}); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	s.activity.Record(ctx, ActivityEvent{
		Kind:     ActivityDisconnect,
		Username: session.Username,
		MAC:      session.MAC,
		Detail:   "by " + actor,
	})
	return nasErr
}
