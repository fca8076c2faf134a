package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// PromotionService manages cohorts and their RADIUS group provisioning.
type PromotionService interface {
	List(ctx context.Context) ([]PromotionView, error)
	GetByID(ctx context.Context, id int64) (*PromotionView, error)
	Create(ctx context.Context, input PromotionCreateInput) (*repository.Promotion, error)
	Update(ctx context.Context, input PromotionUpdateInput) (*repository.Promotion, error)
	Delete(ctx context.Context, id int64) error
}

// PromotionView joins a promotion with its member counts for the console.
type PromotionView struct {
	repository.Promotion
	UserCount       int64 `json:"user_count"`
	ActiveUserCount int64 `json:"active_user_count"`
}

// PromotionCreateInput creates a cohort.
type PromotionCreateInput struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Year      int    `json:"year"`
	ProfileID *int64 `json:"profile_id"`
}

// PromotionUpdateInput describes the updatable fields.
type PromotionUpdateInput struct {
	ID        int64   `json:"id"`
	Code      *string `json:"code,omitempty"`
	Name      *string `json:"name,omitempty"`
	Year      *int    `json:"year,omitempty"`
	ProfileID *int64  `json:"profile_id,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

type promotionService struct {
	promotions  repository.PromotionRepository
	profiles    repository.ProfileRepository
	users       repository.UserRepository
	provisioner RadiusProvisioner
}

// NewPromotionService assembles the cohort flows.
func NewPromotionService(
	promotions repository.PromotionRepository,
	profiles repository.ProfileRepository,
	users repository.UserRepository,
	provisioner RadiusProvisioner,
) PromotionService {
	return &promotionService{
		promotions:  promotions,
		profiles:    profiles,
		users:       users,
		provisioner: provisioner,
	}
}

func (s *promotionService) List(ctx context.Context) ([]PromotionView, error) {
	if s == nil || s.promotions == nil {
		return nil, fmt.Errorf("promotion service not configured")
	}
	promotions, err := s.promotions.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(promotions))
	for _, promotion := range promotions {
		ids = append(ids, promotion.ID)
	}
	counts, err := s.users.PromotionCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]PromotionView, 0, len(promotions))
	for _, promotion := range promotions {
		view := PromotionView{Promotion: *promotion}
		if count, ok := counts[promotion.ID]; ok {
			view.UserCount = count.Total
			view.ActiveUserCount = count.Active
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *promotionService) GetByID(ctx context.Context, id int64) (*PromotionView, error) {
	promotion, err := s.promotions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	view := &PromotionView{Promotion: *promotion}
	counts, err := s.users.PromotionCounts(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if count, ok := counts[id]; ok {
		view.UserCount = count.Total
		view.ActiveUserCount = count.Active
	}
	return view, nil
}

func (s *promotionService) Create(ctx context.Context, input PromotionCreateInput) (*repository.Promotion, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" || strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.promotions.FindByCode(ctx, code); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var profile *repository.Profile
	if input.ProfileID != nil {
		var err error
		profile, err = s.profiles.FindByID(ctx, *input.ProfileID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	promotion := &repository.Promotion{
		Code:      code,
		Name:      strings.TrimSpace(input.Name),
		Year:      input.Year,
		ProfileID: input.ProfileID,
		Active:    true,
	}
	created, err := s.promotions.Create(ctx, promotion)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if s.provisioner != nil && profile != nil {
		if err := s.provisioner.ProvisionGroup(ctx, created.Code, profile); err != nil {
			return nil, fmt.Errorf("radius group provisioning: %w", err)
		}
	}
	return created, nil
}

func (s *promotionService) Update(ctx context.Context, input PromotionUpdateInput) (*repository.Promotion, error) {
	promotion, err := s.promotions.FindByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	oldCode := promotion.Code
	if input.Code != nil && strings.TrimSpace(*input.Code) != "" {
		promotion.Code = strings.TrimSpace(*input.Code)
	}
	if input.Name != nil {
		promotion.Name = strings.TrimSpace(*input.Name)
	}
	if input.Year != nil {
		promotion.Year = *input.Year
	}
	profileChanged := false
	if input.ProfileID != nil {
		if *input.ProfileID > 0 {
			if _, err := s.profiles.FindByID(ctx, *input.ProfileID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, ErrNotFound
				}
				return nil, err
			}
			promotion.ProfileID = input.ProfileID
		} else {
			promotion.ProfileID = nil
		}
		profileChanged = true
	}
	if input.Active != nil {
		promotion.Active = *input.Active
	}

	if err := s.promotions.Update(ctx, promotion); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if s.provisioner != nil && (profileChanged || promotion.Code != oldCode) {
		if promotion.Code != oldCode {
			if err := s.provisioner.DeprovisionGroup(ctx, oldCode); err != nil {
				return nil, fmt.Errorf("radius group cleanup: %w", err)
			}
		}
		var profile *repository.Profile
		if promotion.ProfileID != nil {
			profile, err = s.profiles.FindByID(ctx, *promotion.ProfileID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
		}
		if err := s.provisioner.ProvisionGroup(ctx, promotion.Code, profile); err != nil {
			return nil, fmt.Errorf("radius group provisioning: %w", err)
		}
	}
	return promotion, nil
}

func (s *promotionService) Delete(ctx context.Context, id int64) error {
	promotion, err := s.promotions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	counts, err := s.users.PromotionCounts(ctx, []int64{id})
	if err != nil {
		return err
	}
	if count, ok := counts[id]; ok && count.Total > 0 {
		return ErrPromotionInUse
	}

	if s.provisioner != nil {
		if err := s.provisioner.DeprovisionGroup(ctx, promotion.Code); err != nil {
			return fmt.Errorf("radius group cleanup: %w", err)
		}
	}
	return s.promotions.Delete(ctx, id)
}
