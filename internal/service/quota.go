package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/nas"
	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// QuotaEnforcer walks users with active sessions and cuts off the ones past
// their promotion profile's quota, or whose cohort has been deactivated. The
// enforcement loop runs from the scheduler; Enforce is also callable one-off
// from the CLI.
type QuotaEnforcer interface {
	Enforce(ctx context.Context) (*QuotaEnforceResult, error)
}

// QuotaEnforceResult summarizes one enforcement pass.
type QuotaEnforceResult struct {
	Checked      int `json:"checked"`
	Disconnected int `json:"disconnected"`
}

type quotaEnforcer struct {
	users        repository.UserRepository
	promotions   repository.PromotionRepository
	profiles     repository.ProfileRepository
	sessions     repository.SessionRepository
	logs         repository.DisconnectionLogRepository
	provisioner  RadiusProvisioner
	disconnector nas.Disconnector
	logger       *slog.Logger
}

// QuotaEnforcerOptions configure the enforcement pass.
type QuotaEnforcerOptions struct {
	Users        repository.UserRepository
	Promotions   repository.PromotionRepository
	Profiles     repository.ProfileRepository
	Sessions     repository.SessionRepository
	Logs         repository.DisconnectionLogRepository
	Provisioner  RadiusProvisioner
	Disconnector nas.Disconnector
	Logger       *slog.Logger
}

// NewQuotaEnforcer assembles the enforcement pass.
func NewQuotaEnforcer(opts QuotaEnforcerOptions) QuotaEnforcer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &quotaEnforcer{
		users:        opts.Users,
		promotions:   opts.Promotions,
		profiles:     opts.Profiles,
		sessions:     opts.Sessions,
		logs:         opts.Logs,
		provisioner:  opts.Provisioner,
		disconnector: opts.Disconnector,
		logger:       logger,
	}
}

func (e *quotaEnforcer) Enforce(ctx context.Context) (*QuotaEnforceResult, error) {
	if e == nil || e.sessions == nil {
		return nil, fmt.Errorf("quota enforcer not configured")
	}

	result := &QuotaEnforceResult{}
	profileCache := make(map[int64]*repository.Profile)
	promotionCache := make(map[int64]*repository.Promotion)

	// Only users with an open session can be over quota right now; everyone
	// else is checked when their next session starts. Collect the whole
	// active set before acting on it: disconnecting shrinks the filtered
	// listing, so paging and closing at the same time would skip rows.
	const page = 200
	var open []*repository.Session
	for offset := 0; ; offset += page {
		batch, err := e.sessions.ListActive(ctx, page, offset)
		if err != nil {
			return nil, err
		}
		open = append(open, batch...)
		if len(batch) < page {
			break
		}
	}

	seen := make(map[int64]bool)
	for _, session := range open {
		if seen[session.UserID] {
			continue
		}
		seen[session.UserID] = true
		result.Checked++

		disconnected, err := e.checkUser(ctx, session.UserID, profileCache, promotionCache)
		if err != nil {
			e.logger.WarnContext(ctx, "quota check failed", "user_id", session.UserID, "error", err)
			continue
		}
		if disconnected {
			result.Disconnected++
		}
	}
	return result, nil
}

func (e *quotaEnforcer) checkUser(
	ctx context.Context,
	userID int64,
	profileCache map[int64]*repository.Profile,
	promotionCache map[int64]*repository.Promotion,
) (bool, error) {
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.PromotionID == nil {
		return false, nil
	}

	promotion, ok := promotionCache[*user.PromotionID]
	if !ok {
		promotion, err = e.promotions.FindByID(ctx, *user.PromotionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		promotionCache[*user.PromotionID] = promotion
	}
	// A deactivated cohort has lapsed; its members lose access regardless of
	// how much quota remains.
	if !promotion.Active {
		return e.cutOff(ctx, user, repository.DisconnectExpired, 0)
	}
	if promotion.ProfileID == nil {
		return false, nil
	}

	profile, ok := profileCache[*promotion.ProfileID]
	if !ok {
		profile, err = e.profiles.FindByID(ctx, *promotion.ProfileID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		profileCache[*promotion.ProfileID] = profile
	}
	if profile.QuotaType == repository.QuotaNone || profile.QuotaValue <= 0 {
		return false, nil
	}

	window := time.Duration(profile.ValidityDays) * 24 * time.Hour
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	usage, err := e.sessions.UsageSince(ctx, user.ID, time.Now().Add(-window).Unix())
	if err != nil {
		return false, err
	}

	var exceeded bool
	var used int64
	switch profile.QuotaType {
	case repository.QuotaVolume:
		used = usage.InputOctets + usage.OutputOctets
		exceeded = used >= profile.QuotaValue
	case repository.QuotaTime:
		used = usage.Seconds
		exceeded = used >= profile.QuotaValue
	}
	if !exceeded {
		return false, nil
	}
	return e.cutOff(ctx, user, repository.DisconnectQuotaExceeded, used)
}

// cutOff disconnects the user unless an open log shows they already are.
// Logging twice would double-count the user in the stats.
func (e *quotaEnforcer) cutOff(ctx context.Context, user *repository.User, reason string, used int64) (bool, error) {
	if _, err := e.logs.OpenForUser(ctx, user.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	return true, e.disconnectUser(ctx, user, reason, used)
}

func (e *quotaEnforcer) disconnectUser(ctx context.Context, user *repository.User, reason string, usedBytes int64) error {
	if e.provisioner != nil {
		if err := e.provisioner.SetUserAccess(ctx, user.Username, false); err != nil {
			return fmt.Errorf("radius block: %w", err)
		}
	}
	_ = e.users.SetRadiusActivated(ctx, user.ID, false)

	now := time.Now().Unix()
	active, err := e.sessions.ActiveForUser(ctx, user.ID)
	if err == nil {
		for _, session := range active {
			if e.disconnector != nil {
				_ = e.disconnector.Disconnect(ctx, nas.DisconnectRequest{
					Username:      session.Username,
					MAC:           session.MAC,
					AcctSessionID: session.AcctSessionID,
					Reason:        reason,
				})
			}
			_ = e.sessions.Close(ctx, session.ID, now, "Session-Timeout")
		}
	}

	_, err = e.logs.Create(ctx, &repository.DisconnectionLog{
		UserID:         user.ID,
		Username:       user.Username,
		Reason:         reason,
		QuotaUsedBytes: usedBytes,
		DisconnectedAt: now,
	})
	if err != nil {
		return err
	}
	e.logger.InfoContext(ctx, "user disconnected", "username", user.Username, "reason", reason, "used", usedBytes)
	return nil
}
