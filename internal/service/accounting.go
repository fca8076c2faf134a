package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// Accounting status types, matching the RADIUS Acct-Status-Type attribute.
const (
	AcctStatusStart   = "Start"
	AcctStatusInterim = "Interim-Update"
	AcctStatusStop    = "Stop"
)

// AccountingService ingests the accounting webhook the NAS posts on every
// Start, Interim-Update and Stop packet.
type AccountingService interface {
	Ingest(ctx context.Context, record AccountingRecord) error
}

// AccountingRecord is one accounting packet, flattened to JSON by the NAS.
type AccountingRecord struct {
	StatusType     string `json:"status_type"`
	AcctSessionID  string `json:"acct_session_id"`
	Username       string `json:"username"`
	MAC            string `json:"mac"`
	NASIPAddress   string `json:"nas_ip_address"`
	FramedIP       string `json:"framed_ip"`
	SessionTime    int64  `json:"session_time"`
	InputOctets    int64  `json:"input_octets"`
	OutputOctets   int64  `json:"output_octets"`
	TerminateCause string `json:"terminate_cause"`
	EventAt        int64  `json:"event_at"`
}

type accountingService struct {
	sessions repository.SessionRepository
	devices  repository.DeviceRepository
	users    repository.UserRepository
	activity *ActivityFeed
	logger   *slog.Logger
}

// NewAccountingService assembles the accounting ingest flow. The activity feed
// may be nil, in which case events are not recorded.
func NewAccountingService(
	sessions repository.SessionRepository,
	devices repository.DeviceRepository,
	users repository.UserRepository,
	activity *ActivityFeed,
	logger *slog.Logger,
) AccountingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &accountingService{
		sessions: sessions,
		devices:  devices,
		users:    users,
		activity: activity,
		logger:   logger,
	}
}

func (s *accountingService) Ingest(ctx context.Context, record AccountingRecord) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("accounting service not configured")
	}
	if strings.TrimSpace(record.AcctSessionID) == "" {
		return ErrInvalidInput
	}

	mac, err := NormalizeMAC(record.MAC)
	if err != nil {
		return err
	}
	record.MAC = mac
	if record.EventAt == 0 {
		record.EventAt = time.Now().Unix()
	}

	user, err := s.resolveUser(ctx, record.Username)
	if err != nil {
		return err
	}
	s.touchDevice(ctx, record, user)

	switch record.StatusType {
	case AcctStatusStart:
		return s.handleStart(ctx, record, user)
	case AcctStatusInterim:
		return s.handleInterim(ctx, record, user)
	case AcctStatusStop:
		return s.handleStop(ctx, record, user)
	default:
		return ErrInvalidInput
	}
}

func (s *accountingService) resolveUser(ctx context.Context, username string) (*repository.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// touchDevice learns the device on first sight and refreshes last_seen_at on
// every packet after that.
func (s *accountingService) touchDevice(ctx context.Context, record AccountingRecord, user *repository.User) {
	if s.devices == nil {
		return
	}
	if _, err := s.devices.FindByMAC(ctx, record.MAC); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return
		}
		_, err = s.devices.Create(ctx, &repository.Device{
			UserID:      user.ID,
			MAC:         record.MAC,
			FirstSeenAt: record.EventAt,
			LastSeenAt:  record.EventAt,
			Active:      true,
		})
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			s.logger.WarnContext(ctx, "device create failed", "mac", record.MAC, "error", err)
		}
		return
	}
	if err := s.devices.TouchSeen(ctx, record.MAC, record.EventAt); err != nil {
		s.logger.WarnContext(ctx, "device touch failed", "mac", record.MAC, "error", err)
	}
}

func (s *accountingService) handleStart(ctx context.Context, record AccountingRecord, user *repository.User) error {
	_, err := s.sessions.Create(ctx, &repository.Session{
		AcctSessionID: record.AcctSessionID,
		UserID:        user.ID,
		Username:      user.Username,
		MAC:           record.MAC,
		NASIPAddress:  record.NASIPAddress,
		FramedIP:      record.FramedIP,
		StartedAt:     record.EventAt,
		UpdatedAt:     record.EventAt,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// Retransmitted Start, nothing to do.
		return nil
	}
	if err == nil {
		s.activity.Record(ctx, ActivityEvent{
			At:       record.EventAt,
			Kind:     ActivityLogin,
			Username: user.Username,
			MAC:      record.MAC,
		})
	}
	return err
}

func (s *accountingService) handleInterim(ctx context.Context, record AccountingRecord, user *repository.User) error {
	session, err := s.sessions.FindByAcctSessionID(ctx, record.AcctSessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The Start packet was lost; reconstruct the session so usage is
			// not silently dropped.
			return s.handleStart(ctx, record, user)
		}
		return err
	}
	session.FramedIP = record.FramedIP
	session.InputOctets = record.InputOctets
	session.OutputOctets = record.OutputOctets
	return s.sessions.Update(ctx, session)
}

func (s *accountingService) handleStop(ctx context.Context, record AccountingRecord, user *repository.User) error {
	session, err := s.sessions.FindByAcctSessionID(ctx, record.AcctSessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		// Stop for an unknown session: create the record, then close it, so
		// the usage still lands in the books.
		startedAt := record.EventAt - record.SessionTime
		if startedAt < 0 {
			startedAt = record.EventAt
		}
		session, err = s.sessions.Create(ctx, &repository.Session{
			AcctSessionID: record.AcctSessionID,
			UserID:        user.ID,
			Username:      user.Username,
			MAC:           record.MAC,
			NASIPAddress:  record.NASIPAddress,
			FramedIP:      record.FramedIP,
			StartedAt:     startedAt,
			InputOctets:   record.InputOctets,
			OutputOctets:  record.OutputOctets,
			UpdatedAt:     record.EventAt,
		})
		if err != nil {
			return err
		}
		if err := s.sessions.Close(ctx, session.ID, record.EventAt, record.TerminateCause); err != nil {
			return err
		}
		s.recordLogout(ctx, record, user)
		return nil
	}

	session.FramedIP = record.FramedIP
	session.InputOctets = record.InputOctets
	session.OutputOctets = record.OutputOctets
	if err := s.sessions.Update(ctx, session); err != nil {
		return err
	}
	if err := s.sessions.Close(ctx, session.ID, record.EventAt, record.TerminateCause); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Already closed by a retransmitted Stop.
			return nil
		}
		return err
	}
	s.recordLogout(ctx, record, user)
	return nil
}

func (s *accountingService) recordLogout(ctx context.Context, record AccountingRecord, user *repository.User) {
	s.activity.Record(ctx, ActivityEvent{
		At:       record.EventAt,
		Kind:     ActivityLogout,
		Username: user.Username,
		MAC:      record.MAC,
		Detail:   record.TerminateCause,
	})
}
