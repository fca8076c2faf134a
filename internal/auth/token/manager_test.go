package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if len(opts.SigningKey) == 0 {
		opts.SigningKey = []byte("test-signing-key")
	}
	m, err := NewManager(opts)
	require.NoError(t, err)
	return m
}

func TestManagerRequiresSigningKey(t *testing.T) {
	_, err := NewManager(Options{})
	assert.Error(t, err)
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(t, Options{Issuer: "portal", Audience: "console", TTL: time.Hour})

	signed, issued, err := m.Issue(IssueInput{
		Subject:   "42",
		TokenType: "access",
		SessionID: "sid-1",
		Attributes: map[string]any{
			"username": "admin",
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.Equal(t, "42", issued.Subject)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, "admin", claims.Attributes["username"])
	assert.Equal(t, "portal", claims.Issuer)
}

func TestIssueRequiresSubject(t *testing.T) {
	m := newTestManager(t, Options{})
	_, _, err := m.Issue(IssueInput{Subject: "   "})
	assert.Error(t, err)
}

func TestParseRejectsWrongKey(t *testing.T) {
	m := newTestManager(t, Options{})
	other := newTestManager(t, Options{SigningKey: []byte("a-different-key")})

	signed, _, err := other.Issue(IssueInput{Subject: "42"})
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	m := newTestManager(t, Options{Issuer: "portal"})
	other := newTestManager(t, Options{Issuer: "someone-else"})

	signed, _, err := other.Issue(IssueInput{Subject: "42"})
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongAudience(t *testing.T) {
	m := newTestManager(t, Options{Audience: "console"})

	signed, _, err := m.Issue(IssueInput{Subject: "42", Audience: "something-else"})
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := newTestManager(t, Options{})

	signed, _, err := m.Issue(IssueInput{Subject: "42", TTL: time.Millisecond})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := newTestManager(t, Options{})
	_, err := m.Parse("not.a.jwt")
	assert.Error(t, err)
}

func TestRefreshKeepsIdentity(t *testing.T) {
	m := newTestManager(t, Options{Issuer: "portal"})

	signed, _, err := m.Issue(IssueInput{
		Subject:    "42",
		TokenType:  "refresh",
		SessionID:  "sid-1",
		Attributes: map[string]any{"username": "admin"},
	})
	require.NoError(t, err)

	claims, err := m.Parse(signed)
	require.NoError(t, err)

	reissued, _, err := m.Refresh(claims, time.Hour)
	require.NoError(t, err)

	next, err := m.Parse(reissued)
	require.NoError(t, err)
	assert.Equal(t, "42", next.Subject)
	assert.Equal(t, "refresh", next.TokenType)
	assert.Equal(t, "sid-1", next.SessionID)
	assert.Equal(t, "admin", next.Attributes["username"])
}
