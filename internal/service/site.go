package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// SiteService manages the blacklist and whitelist enforced at the gateway.
type SiteService interface {
	Fetch(ctx context.Context, input SiteFetchInput) (*SiteFetchResult, error)
	GetByID(ctx context.Context, id int64) (*repository.Site, error)
	Create(ctx context.Context, input SiteCreateInput) (*repository.Site, error)
	Update(ctx context.Context, input SiteUpdateInput) (*repository.Site, error)
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64, active bool) (*repository.Site, error)
	Import(ctx context.Context, entries []SiteCreateInput) (*SiteImportResult, error)
}

// SiteFetchInput controls pagination and filters.
type SiteFetchInput struct {
	ListType string
	Query    string
	Active   *bool
	Limit    int
	Offset   int
}

// SiteFetchResult wraps a paginated listing.
type SiteFetchResult struct {
	Sites []*repository.Site `json:"sites"`
	Total int64              `json:"total"`
}

// SiteCreateInput adds a list entry.
type SiteCreateInput struct {
	URL      string `json:"url" yaml:"url"`
	ListType string `json:"list_type" yaml:"list_type"`
	Reason   string `json:"reason" yaml:"reason"`
}

// SiteUpdateInput describes the updatable fields.
type SiteUpdateInput struct {
	ID     int64   `json:"id"`
	URL    *string `json:"url,omitempty"`
	Reason *string `json:"reason,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// SiteImportResult reports a bulk import outcome. Entries already on the list
// are skipped, not failed, so re-importing a curated file is idempotent.
type SiteImportResult struct {
	SuccessCount int      `json:"success_count"`
	SkippedCount int      `json:"skipped_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors"`
}

type siteService struct {
	sites     repository.SiteRepository
	sanitizer *bluemonday.Policy
}

// NewSiteService assembles the list management flows. Free-text reasons are
// sanitized because they render in the admin console.
func NewSiteService(sites repository.SiteRepository) SiteService {
	return &siteService{
		sites:     sites,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func normalizeSiteURL(raw string) (string, error) {
	cleaned := strings.TrimSpace(strings.ToLower(raw))
	if cleaned == "" {
		return "", ErrInvalidInput
	}
	// Accept bare domains as well as full URLs; store the host part only so
	// the gateway's DNS filter matches consistently.
	if strings.Contains(cleaned, "://") {
		parsed, err := url.Parse(cleaned)
		if err != nil || parsed.Host == "" {
			return "", ErrInvalidInput
		}
		cleaned = parsed.Host
	}
	cleaned = strings.TrimPrefix(cleaned, "www.")
	cleaned = strings.TrimSuffix(cleaned, "/")
	if cleaned == "" || strings.ContainsAny(cleaned, " \t") {
		return "", ErrInvalidInput
	}
	return cleaned, nil
}

func validListType(listType string) bool {
	return listType == repository.SiteBlacklist || listType == repository.SiteWhitelist
}

func (s *siteService) Fetch(ctx context.Context, input SiteFetchInput) (*SiteFetchResult, error) {
	if s == nil || s.sites == nil {
		return nil, fmt.Errorf("site service not configured")
	}
	if input.ListType != "" && !validListType(input.ListType) {
		return nil, ErrInvalidListType
	}
	filter := repository.SiteSearchFilter{
		ListType: input.ListType,
		Keyword:  strings.TrimSpace(input.Query),
		Active:   input.Active,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}
	sites, err := s.sites.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.sites.CountFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &SiteFetchResult{Sites: sites, Total: total}, nil
}

func (s *siteService) GetByID(ctx context.Context, id int64) (*repository.Site, error) {
	site, err := s.sites.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return site, nil
}

func (s *siteService) Create(ctx context.Context, input SiteCreateInput) (*repository.Site, error) {
	if !validListType(input.ListType) {
		return nil, ErrInvalidListType
	}
	normalized, err := normalizeSiteURL(input.URL)
	if err != nil {
		return nil, err
	}

	site := &repository.Site{
		URL:      normalized,
		ListType: input.ListType,
		Reason:   s.sanitizer.Sanitize(strings.TrimSpace(input.Reason)),
		Active:   true,
	}
	created, err := s.sites.Create(ctx, site)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

func (s *siteService) Update(ctx context.Context, input SiteUpdateInput) (*repository.Site, error) {
	site, err := s.sites.FindByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.URL != nil {
		normalized, err := normalizeSiteURL(*input.URL)
		if err != nil {
			return nil, err
		}
		site.URL = normalized
	}
	if input.Reason != nil {
		site.Reason = s.sanitizer.Sanitize(strings.TrimSpace(*input.Reason))
	}
	if input.Active != nil {
		site.Active = *input.Active
	}

	if err := s.sites.Update(ctx, site); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return site, nil
}

func (s *siteService) Delete(ctx context.Context, id int64) error {
	if err := s.sites.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *siteService) Toggle(ctx context.Context, id int64, active bool) (*repository.Site, error) {
	if err := s.sites.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *siteService) Import(ctx context.Context, entries []SiteCreateInput) (*SiteImportResult, error) {
	result := &SiteImportResult{}
	for _, entry := range entries {
		if validListType(entry.ListType) {
			if normalized, err := normalizeSiteURL(entry.URL); err == nil {
				if _, err := s.sites.FindByURL(ctx, entry.ListType, normalized); err == nil {
					result.SkippedCount++
					continue
				}
			}
		}
		if _, err := s.Create(ctx, entry); err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.URL, err))
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}
