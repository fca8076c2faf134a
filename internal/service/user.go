package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
	"github.com/Valerdy/captive-portal-sub000/internal/support/hash"
)

// UserService manages portal accounts and their RADIUS provisioning.
type UserService interface {
	Fetch(ctx context.Context, input UserFetchInput) (*UserFetchResult, error)
	GetByID(ctx context.Context, id int64) (*repository.User, error)
	Create(ctx context.Context, input UserCreateInput) (*repository.User, error)
	Update(ctx context.Context, input UserUpdateInput) (*repository.User, error)
	Delete(ctx context.Context, id int64) error
	ResetPassword(ctx context.Context, id int64, newPassword string) error
	ActivateRadius(ctx context.Context, id int64) (*repository.User, error)
	DeactivateRadius(ctx context.Context, id int64) (*repository.User, error)
}

// UserFetchInput controls pagination and filters for listings.
type UserFetchInput struct {
	Query           string
	PromotionID     *int64
	Active          *bool
	RadiusActivated *bool
	Limit           int
	Offset          int
}

// UserFetchResult wraps a paginated listing.
type UserFetchResult struct {
	Users []*repository.User `json:"users"`
	Total int64              `json:"total"`
}

// UserCreateInput creates a new account. Password is plaintext and is hashed
// before storage; it is also forwarded to RADIUS provisioning when the
// account starts activated.
type UserCreateInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Matricule       string `json:"matricule"`
	PromotionID     *int64 `json:"promotion_id"`
	Password        string `json:"password"`
	IsAdmin         bool   `json:"is_admin"`
	RadiusActivated bool   `json:"radius_activated"`
}

// UserUpdateInput describes the updatable fields; nil pointers keep the
// current value.
type UserUpdateInput struct {
	ID          int64   `json:"id"`
	Email       *string `json:"email,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Matricule   *string `json:"matricule,omitempty"`
	PromotionID *int64  `json:"promotion_id,omitempty"`
	IsAdmin     *bool   `json:"is_admin,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

type userService struct {
	users       repository.UserRepository
	promotions  repository.PromotionRepository
	hasher      hash.Hasher
	provisioner RadiusProvisioner
}

// NewUserService assembles the account management flows.
func NewUserService(
	users repository.UserRepository,
	promotions repository.PromotionRepository,
	hasher hash.Hasher,
	provisioner RadiusProvisioner,
) UserService {
	return &userService{
		users:       users,
		promotions:  promotions,
		hasher:      hasher,
		provisioner: provisioner,
	}
}

func (s *userService) Fetch(ctx context.Context, input UserFetchInput) (*UserFetchResult, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("user service not configured")
	}
	filter := repository.UserSearchFilter{
		Keyword:         strings.TrimSpace(input.Query),
		PromotionID:     input.PromotionID,
		Active:          input.Active,
		RadiusActivated: input.RadiusActivated,
		Limit:           input.Limit,
		Offset:          input.Offset,
	}
	users, err := s.users.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.users.CountFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &UserFetchResult{Users: users, Total: total}, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*repository.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, input UserCreateInput) (*repository.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}
	if input.PromotionID != nil {
		if _, err := s.promotions.FindByID(ctx, *input.PromotionID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &repository.User{
		Username:        username,
		Email:           strings.TrimSpace(input.Email),
		FirstName:       strings.TrimSpace(input.FirstName),
		LastName:        strings.TrimSpace(input.LastName),
		Matricule:       strings.TrimSpace(input.Matricule),
		PromotionID:     input.PromotionID,
		Password:        hashed,
		IsAdmin:         input.IsAdmin,
		RadiusActivated: input.RadiusActivated,
		Active:          true,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	if input.RadiusActivated && s.provisioner != nil {
		if err := s.provisionWithGroup(ctx, created, input.Password); err != nil {
			// Roll back the account so the panel and RADIUS never disagree
			// about who can authenticate.
			_ = s.users.Delete(ctx, created.ID)
			return nil, fmt.Errorf("radius provisioning: %w", err)
		}
	}
	return created, nil
}

func (s *userService) Update(ctx context.Context, input UserUpdateInput) (*repository.User, error) {
	user, err := s.users.FindByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Matricule != nil {
		user.Matricule = strings.TrimSpace(*input.Matricule)
	}
	promotionChanged := false
	if input.PromotionID != nil {
		if *input.PromotionID > 0 {
			if _, err := s.promotions.FindByID(ctx, *input.PromotionID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, ErrNotFound
				}
				return nil, err
			}
			user.PromotionID = input.PromotionID
		} else {
			user.PromotionID = nil
		}
		promotionChanged = true
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	if promotionChanged && user.RadiusActivated && s.provisioner != nil {
		if err := s.provisioner.SetUserGroup(ctx, user.Username, s.groupFor(ctx, user)); err != nil {
			return nil, fmt.Errorf("radius group update: %w", err)
		}
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if s.provisioner != nil {
		if err := s.provisioner.DeprovisionUser(ctx, user.Username); err != nil {
			return fmt.Errorf("radius deprovisioning: %w", err)
		}
	}
	return s.users.Delete(ctx, id)
}

func (s *userService) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidInput
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if user.RadiusActivated && s.provisioner != nil {
		return s.provisionWithGroup(ctx, user, newPassword)
	}
	return nil
}

// ActivateRadius re-enables an already provisioned account. Fresh accounts
// get their RADIUS rows at creation or password reset, when the plaintext
// password is in hand.
func (s *userService) ActivateRadius(ctx context.Context, id int64) (*repository.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.provisioner != nil {
		if err := s.provisioner.SetUserAccess(ctx, user.Username, true); err != nil {
			return nil, fmt.Errorf("radius access update: %w", err)
		}
		if err := s.provisioner.SetUserGroup(ctx, user.Username, s.groupFor(ctx, user)); err != nil {
			return nil, fmt.Errorf("radius group update: %w", err)
		}
	}
	if err := s.users.SetRadiusActivated(ctx, user.ID, true); err != nil {
		return nil, err
	}
	user.RadiusActivated = true
	return user, nil
}

func (s *userService) DeactivateRadius(ctx context.Context, id int64) (*repository.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.provisioner != nil {
		if err := s.provisioner.SetUserAccess(ctx, user.Username, false); err != nil {
			return nil, fmt.Errorf("radius access update: %w", err)
		}
	}
	if err := s.users.SetRadiusActivated(ctx, user.ID, false); err != nil {
		return nil, err
	}
	user.RadiusActivated = false
	return user, nil
}

func (s *userService) provisionWithGroup(ctx context.Context, user *repository.User, plainPassword string) error {
	if err := s.provisioner.ProvisionUser(ctx, user, plainPassword); err != nil {
		return err
	}
	return s.provisioner.SetUserGroup(ctx, user.Username, s.groupFor(ctx, user))
}

func (s *userService) groupFor(ctx context.Context, user *repository.User) string {
	if user.PromotionID == nil || s.promotions == nil {
		return ""
	}
	promotion, err := s.promotions.FindByID(ctx, *user.PromotionID)
	if err != nil {
		return ""
	}
	return promotion.Code
}
