package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

func TestNormalizeSiteURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare domain", input: "example.com", want: "example.com"},
		{name: "full url", input: "https://www.Example.com/", want: "example.com"},
		{name: "with path", input: "http://example.com/some/page", want: "example.com"},
		{name: "www stripped", input: "www.facebook.com", want: "facebook.com"},
		{name: "subdomain kept", input: "cdn.example.com", want: "cdn.example.com"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "embedded space", input: "exa mple.com", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeSiteURL(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSiteCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewSiteService(newFakeSiteRepo())

	created, err := svc.Create(ctx, SiteCreateInput{
		URL:      "https://www.BadSite.com/",
		ListType: repository.SiteBlacklist,
		Reason:   "malware distribution",
	})
	require.NoError(t, err)
	assert.Equal(t, "badsite.com", created.URL)
	assert.Equal(t, repository.SiteBlacklist, created.ListType)
	assert.True(t, created.Active)

	// Reason free text is stripped of markup before storage.
	withMarkup, err := svc.Create(ctx, SiteCreateInput{
		URL:      "other.com",
		ListType: repository.SiteBlacklist,
		Reason:   "<script>alert(1)</script>phishing",
	})
	require.NoError(t, err)
	assert.Equal(t, "phishing", withMarkup.Reason)

	_, err = svc.Create(ctx, SiteCreateInput{URL: "badsite.com", ListType: repository.SiteBlacklist})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Create(ctx, SiteCreateInput{URL: "x.com", ListType: "greylist"})
	assert.ErrorIs(t, err, ErrInvalidListType)
}

func TestSiteSameURLOnBothLists(t *testing.T) {
	ctx := context.Background()
	svc := NewSiteService(newFakeSiteRepo())

	_, err := svc.Create(ctx, SiteCreateInput{URL: "example.com", ListType: repository.SiteBlacklist})
	require.NoError(t, err)
	_, err = svc.Create(ctx, SiteCreateInput{URL: "example.com", ListType: repository.SiteWhitelist})
	require.NoError(t, err)
}

func TestSiteToggle(t *testing.T) {
	ctx := context.Background()
	svc := NewSiteService(newFakeSiteRepo())

	created, err := svc.Create(ctx, SiteCreateInput{URL: "example.com", ListType: repository.SiteBlacklist})
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	_, err = svc.Toggle(ctx, 999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSiteImport(t *testing.T) {
	ctx := context.Background()
	svc := NewSiteService(newFakeSiteRepo())

	result, err := svc.Import(ctx, []SiteCreateInput{
		{URL: "one.com", ListType: repository.SiteBlacklist},
		{URL: "two.com", ListType: repository.SiteBlacklist},
		{URL: "one.com", ListType: repository.SiteBlacklist},
		{URL: "", ListType: repository.SiteBlacklist},
		{URL: "three.com", ListType: "bogus"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 2, result.FailureCount)
	assert.Len(t, result.Errors, 2)
}

func TestSiteImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewSiteService(newFakeSiteRepo())

	entries := []SiteCreateInput{
		{URL: "https://www.one.com/", ListType: repository.SiteBlacklist},
		{URL: "two.com", ListType: repository.SiteWhitelist},
	}

	first, err := svc.Import(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, first.SuccessCount)

	// The same file again changes nothing and reports no failures.
	second, err := svc.Import(ctx, entries)
	require.NoError(t, err)
	assert.Zero(t, second.SuccessCount)
	assert.Equal(t, 2, second.SkippedCount)
	assert.Zero(t, second.FailureCount)
}
