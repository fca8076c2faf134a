package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
	"github.com/Valerdy/captive-portal-sub000/internal/security"
)

// DisconnectionService exposes the cut-off history and restores access.
type DisconnectionService interface {
	Fetch(ctx context.Context, input DisconnectionFetchInput) (*DisconnectionFetchResult, error)
	Stats(ctx context.Context, since time.Duration) (*repository.DisconnectionStats, error)
	Reactivate(ctx context.Context, logID int64, actor string) (*repository.DisconnectionLog, error)
}

// DisconnectionFetchInput controls pagination and filters.
type DisconnectionFetchInput struct {
	UserID     *int64
	Reason     string
	ActiveOnly bool
	Since      int64
	Limit      int
	Offset     int
}

// DisconnectionFetchResult wraps a paginated listing.
type DisconnectionFetchResult struct {
	Logs  []*repository.DisconnectionLog `json:"logs"`
	Total int64                          `json:"total"`
}

type disconnectionService struct {
	logs        repository.DisconnectionLogRepository
	users       repository.UserRepository
	provisioner RadiusProvisioner
	audit       security.Recorder
}

// NewDisconnectionService assembles the cut-off history flows.
func NewDisconnectionService(
	logs repository.DisconnectionLogRepository,
	users repository.UserRepository,
	provisioner RadiusProvisioner,
	audit security.Recorder,
) DisconnectionService {
	return &disconnectionService{
		logs:        logs,
		users:       users,
		provisioner: provisioner,
		audit:       audit,
	}
}

func (s *disconnectionService) Fetch(ctx context.Context, input DisconnectionFetchInput) (*DisconnectionFetchResult, error) {
	if s == nil || s.logs == nil {
		return nil, fmt.Errorf("disconnection service not configured")
	}
	filter := repository.DisconnectionLogFilter{
		UserID:     input.UserID,
		Reason:     input.Reason,
		ActiveOnly: input.ActiveOnly,
		Since:      input.Since,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}
	logs, err := s.logs.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.logs.CountFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DisconnectionFetchResult{Logs: logs, Total: total}, nil
}

func (s *disconnectionService) Stats(ctx context.Context, since time.Duration) (*repository.DisconnectionStats, error) {
	var sinceUnix int64
	if since > 0 {
		sinceUnix = time.Now().Add(-since).Unix()
	}
	stats, err := s.logs.Stats(ctx, sinceUnix)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Reactivate closes the log entry and restores the user's RADIUS access. A
// log that is already closed is rejected so two admins cannot double-restore.
func (s *disconnectionService) Reactivate(ctx context.Context, logID int64, actor string) (*repository.DisconnectionLog, error) {
	log, err := s.logs.FindByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if log.ReconnectedAt > 0 {
		return nil, ErrAlreadyReactivated
	}

	if s.provisioner != nil {
		if err := s.provisioner.SetUserAccess(ctx, log.Username, true); err != nil {
			return nil, fmt.Errorf("radius access restore: %w", err)
		}
	}

	now := time.Now().Unix()
	if err := s.logs.Reactivate(ctx, logID, now, actor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlreadyReactivated
		}
		return nil, err
	}
	_ = s.users.SetRadiusActivated(ctx, log.UserID, true)

	if s.audit != nil {
		s.audit.Record(ctx, security.Event{
			Kind:    "disconnection.reactivate",
			ActorID: actor,
			Metadata: map[string]any{
				"log_id":   strconv.FormatInt(logID, 10),
				"username": log.Username,
			},
		})
	}

	log.ReconnectedAt = now
	log.ReactivatedBy = actor
	return log, nil
}
