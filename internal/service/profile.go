package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// ProfileService manages bandwidth/quota policies. Changing a profile
// reprovisions every promotion group that uses it.
type ProfileService interface {
	List(ctx context.Context) ([]*repository.Profile, error)
	GetByID(ctx context.Context, id int64) (*repository.Profile, error)
	Create(ctx context.Context, input ProfileInput) (*repository.Profile, error)
	Update(ctx context.Context, id int64, input ProfileInput) (*repository.Profile, error)
	Delete(ctx context.Context, id int64) error
}

// ProfileInput carries every policy field; updates replace the whole record.
type ProfileInput struct {
	Name               string `json:"name"`
	BandwidthUpKbps    int64  `json:"bandwidth_up_kbps"`
	BandwidthDownKbps  int64  `json:"bandwidth_down_kbps"`
	QuotaType          string `json:"quota_type"`
	QuotaValue         int64  `json:"quota_value"`
	ValidityDays       int    `json:"validity_days"`
	SessionTimeoutSecs int64  `json:"session_timeout_secs"`
	IdleTimeoutSecs    int64  `json:"idle_timeout_secs"`
	SimultaneousUse    int    `json:"simultaneous_use"`
}

type profileService struct {
	profiles    repository.ProfileRepository
	promotions  repository.PromotionRepository
	provisioner RadiusProvisioner
}

// NewProfileService assembles the policy flows.
func NewProfileService(
	profiles repository.ProfileRepository,
	promotions repository.PromotionRepository,
	provisioner RadiusProvisioner,
) ProfileService {
	return &profileService{
		profiles:    profiles,
		promotions:  promotions,
		provisioner: provisioner,
	}
}

func validQuotaType(quotaType string) bool {
	switch quotaType {
	case repository.QuotaNone, repository.QuotaVolume, repository.QuotaTime:
		return true
	}
	return false
}

func (s *profileService) validate(input ProfileInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrInvalidInput
	}
	if !validQuotaType(input.QuotaType) {
		return ErrInvalidInput
	}
	if input.QuotaType != repository.QuotaNone && input.QuotaValue <= 0 {
		return ErrInvalidInput
	}
	if input.BandwidthUpKbps < 0 || input.BandwidthDownKbps < 0 {
		return ErrInvalidInput
	}
	return nil
}

func (s *profileService) List(ctx context.Context) ([]*repository.Profile, error) {
	if s == nil || s.profiles == nil {
		return nil, fmt.Errorf("profile service not configured")
	}
	return s.profiles.List(ctx)
}

func (s *profileService) GetByID(ctx context.Context, id int64) (*repository.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) Create(ctx context.Context, input ProfileInput) (*repository.Profile, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	profile := &repository.Profile{
		Name:               strings.TrimSpace(input.Name),
		BandwidthUpKbps:    input.BandwidthUpKbps,
		BandwidthDownKbps:  input.BandwidthDownKbps,
		QuotaType:          input.QuotaType,
		QuotaValue:         input.QuotaValue,
		ValidityDays:       input.ValidityDays,
		SessionTimeoutSecs: input.SessionTimeoutSecs,
		IdleTimeoutSecs:    input.IdleTimeoutSecs,
		SimultaneousUse:    input.SimultaneousUse,
	}
	created, err := s.profiles.Create(ctx, profile)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

func (s *profileService) Update(ctx context.Context, id int64, input ProfileInput) (*repository.Profile, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	profile.Name = strings.TrimSpace(input.Name)
	profile.BandwidthUpKbps = input.BandwidthUpKbps
	profile.BandwidthDownKbps = input.BandwidthDownKbps
	profile.QuotaType = input.QuotaType
	profile.QuotaValue = input.QuotaValue
	profile.ValidityDays = input.ValidityDays
	profile.SessionTimeoutSecs = input.SessionTimeoutSecs
	profile.IdleTimeoutSecs = input.IdleTimeoutSecs
	profile.SimultaneousUse = input.SimultaneousUse

	if err := s.profiles.Update(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if s.provisioner != nil {
		promotions, err := s.promotions.ListByProfile(ctx, profile.ID)
		if err != nil {
			return nil, err
		}
		for _, promotion := range promotions {
			if err := s.provisioner.ProvisionGroup(ctx, promotion.Code, profile); err != nil {
				return nil, fmt.Errorf("radius group reprovisioning: %w", err)
			}
		}
	}
	return profile, nil
}

func (s *profileService) Delete(ctx context.Context, id int64) error {
	promotions, err := s.promotions.ListByProfile(ctx, id)
	if err != nil {
		return err
	}
	if len(promotions) > 0 {
		return ErrProfileInUse
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
