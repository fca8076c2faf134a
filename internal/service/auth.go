package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Valerdy/captive-portal-sub000/internal/auth/token"
	"github.com/Valerdy/captive-portal-sub000/internal/repository"
	"github.com/Valerdy/captive-portal-sub000/internal/security"
	"github.com/Valerdy/captive-portal-sub000/internal/support/hash"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	loginAttemptLimit  = 10
	loginAttemptWindow = 5 * time.Minute
)

// AuthService authenticates console admins and issues JWT pairs.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Me(ctx context.Context, adminID int64) (*repository.User, error)
}

// LoginInput carries the credentials plus request metadata for auditing.
type LoginInput struct {
	Username  string
	Password  string
	IP        string
	UserAgent string
}

// LoginResult returns the token pair and the authenticated account.
type LoginResult struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresAt    int64            `json:"expires_at"`
	User         *repository.User `json:"user"`
}

type authService struct {
	users      repository.UserRepository
	hasher     hash.Hasher
	tokens     *token.Manager
	limiter    *security.RateLimiter
	audit      security.Recorder
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// AuthOptions configure the auth service.
type AuthOptions struct {
	Users      repository.UserRepository
	Hasher     hash.Hasher
	Tokens     *token.Manager
	Limiter    *security.RateLimiter
	Audit      security.Recorder
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewAuthService assembles the login flow dependencies.
func NewAuthService(opts AuthOptions) AuthService {
	accessTTL := opts.AccessTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := opts.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &authService{
		users:      opts.Users,
		hasher:     opts.Hasher,
		tokens:     opts.Tokens,
		limiter:    opts.Limiter,
		audit:      opts.Audit,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("auth service not configured")
	}
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if s.limiter != nil {
		key := "login:" + username + ":" + input.IP
		result, err := s.limiter.Allow(ctx, key, loginAttemptLimit, loginAttemptWindow)
		if err == nil && !result.Allowed {
			return nil, ErrRateLimited
		}
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsAdmin {
		return nil, ErrUnauthorized
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}
	if err := s.hasher.Compare(user.Password, input.Password); err != nil {
		if errors.Is(err, hash.ErrPasswordMismatch) {
			s.record(ctx, "login.failed", user, input)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now().Unix()
	_ = s.users.SetLastLogin(ctx, user.ID, now)
	user.LastLoginAt = now

	result, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	s.record(ctx, "login.success", user, input)
	return result, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if s == nil || s.tokens == nil {
		return nil, fmt.Errorf("auth service not configured")
	}
	claims, err := s.tokens.Parse(refreshToken)
	if err != nil || claims.TokenType != tokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsAdmin || !user.Active {
		return nil, ErrAccountDisabled
	}
	return s.issuePair(user)
}

func (s *authService) Me(ctx context.Context, adminID int64) (*repository.User, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("auth service not configured")
	}
	user, err := s.users.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) issuePair(user *repository.User) (*LoginResult, error) {
	sessionID := uuid.NewString()
	subject := strconv.FormatInt(user.ID, 10)

	access, claims, err := s.tokens.Issue(token.IssueInput{
		Subject:   subject,
		TokenType: tokenTypeAccess,
		SessionID: sessionID,
		TTL:       s.accessTTL,
		Attributes: map[string]any{
			"username": user.Username,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, _, err := s.tokens.Issue(token.IssueInput{
		Subject:   subject,
		TokenType: tokenTypeRefresh,
		SessionID: sessionID,
		TTL:       s.refreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    claims.ExpiresAt.Unix(),
		User:         user,
	}, nil
}

func (s *authService) record(ctx context.Context, kind string, user *repository.User, input LoginInput) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, security.Event{
		Kind:      kind,
		ActorID:   strconv.FormatInt(user.ID, 10),
		IP:        input.IP,
		UserAgent: input.UserAgent,
		Metadata:  map[string]any{"username": user.Username},
	})
}
