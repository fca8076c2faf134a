package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

type quotaFixture struct {
	enforcer     QuotaEnforcer
	users        *fakeUserRepo
	promotions   *fakePromotionRepo
	sessions     *fakeSessionRepo
	logs         *fakeLogRepo
	provisioner  *fakeProvisioner
	disconnector *fakeDisconnector
	user         *repository.User
	promotion    *repository.Promotion
}

// newQuotaFixture creates one user on a promotion whose profile carries the
// given quota, with one open session.
func newQuotaFixture(t *testing.T, quotaType string, quotaValue int64) *quotaFixture {
	t.Helper()
	ctx := context.Background()

	profiles := newFakeProfileRepo()
	profile, err := profiles.Create(ctx, &repository.Profile{
		Name:         "student",
		QuotaType:    quotaType,
		QuotaValue:   quotaValue,
		ValidityDays: 30,
	})
	require.NoError(t, err)

	promotions := newFakePromotionRepo()
	promotion, err := promotions.Create(ctx, &repository.Promotion{
		Code:      "L3-2026",
		Name:      "Licence 3",
		ProfileID: &profile.ID,
		Active:    true,
	})
	require.NoError(t, err)

	users := newFakeUserRepo()
	user, err := users.Create(ctx, &repository.User{
		Username:        "jdoe",
		PromotionID:     &promotion.ID,
		RadiusActivated: true,
		Active:          true,
	})
	require.NoError(t, err)

	sessions := newFakeSessionRepo()
	_, err = sessions.Create(ctx, &repository.Session{
		AcctSessionID: "sess-quota",
		UserID:        user.ID,
		Username:      user.Username,
		MAC:           "aa:bb:cc:dd:ee:ff",
		StartedAt:     time.Now().Add(-time.Hour).Unix(),
		UpdatedAt:     time.Now().Unix(),
	})
	require.NoError(t, err)

	logs := newFakeLogRepo()
	provisioner := newFakeProvisioner()
	disconnector := &fakeDisconnector{}

	enforcer := NewQuotaEnforcer(QuotaEnforcerOptions{
		Users:        users,
		Promotions:   promotions,
		Profiles:     profiles,
		Sessions:     sessions,
		Logs:         logs,
		Provisioner:  provisioner,
		Disconnector: disconnector,
		Logger:       discardLogger(),
	})

	return &quotaFixture{
		enforcer:     enforcer,
		users:        users,
		promotions:   promotions,
		sessions:     sessions,
		logs:         logs,
		provisioner:  provisioner,
		disconnector: disconnector,
		user:         user,
		promotion:    promotion,
	}
}

func TestQuotaEnforceVolumeExceeded(t *testing.T) {
	f := newQuotaFixture(t, repository.QuotaVolume, 1<<30)
	ctx := context.Background()
	f.sessions.usage[f.user.ID] = repository.UsageTotals{
		InputOctets:  600 << 20,
		OutputOctets: 500 << 20,
	}

	result, err := f.enforcer.Enforce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 1, result.Disconnected)

	// RADIUS access revoked and the open session killed.
	allowed, ok := f.provisioner.accessFor("jdoe")
	require.True(t, ok)
	assert.False(t, allowed)
	assert.Equal(t, 1, f.disconnector.callCount())

	session, err := f.sessions.FindByAcctSessionID(ctx, "sess-quota")
	require.NoError(t, err)
	assert.NotZero(t, session.StoppedAt)
	assert.Equal(t, "Session-Timeout", session.TerminateCause)

	log, err := f.logs.OpenForUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.DisconnectQuotaExceeded, log.Reason)
	assert.Equal(t, int64(1100<<20), log.QuotaUsedBytes)

	user, err := f.users.FindByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, user.RadiusActivated)
}

func TestQuotaEnforceUnderQuota(t *testing.T) {
	f := newQuotaFixture(t, repository.QuotaVolume, 1<<30)
	ctx := context.Background()
	f.sessions.usage[f.user.ID] = repository.UsageTotals{InputOctets: 100 << 20}

	result, err := f.enforcer.Enforce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Checked)
	assert.Zero(t, result.Disconnected)
	assert.Zero(t, f.disconnector.callCount())

	session, err := f.sessions.FindByAcctSessionID(ctx, "sess-quota")
	require.NoError(t, err)
	assert.Zero(t, session.StoppedAt)
}

func TestQuotaEnforceTimeExceeded(t *testing.T) {
	f := newQuotaFixture(t, repository.QuotaTime, 3600)
	ctx := context.Background()
	f.sessions.usage[f.user.ID] = repository.UsageTotals{Seconds: 7200}

	result, err := f.enforcer.Enforce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Disconnected)

	log, err := f.logs.OpenForUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7200), log.QuotaUsedBytes)
}

func TestQuotaEnforceSkipsAlreadyDisconnected(t *testing.T) {
	f := newQuotaFixture(t, repository.QuotaVolume, 1<<30)
	ctx := context.Background()
	f.sessions.usage[f.user.ID] = repository.UsageTotals{InputOctets: 2 << 30}

	// An open log means the user was already cut off by a previous pass.
	_, err := f.logs.Create(ctx, &repository.DisconnectionLog{
		UserID:         f.user.ID,
		Username:       f.user.Username,
		Reason:         repository.DisconnectQuotaExceeded,
		DisconnectedAt: time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	result, err := f.enforcer.Enforce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Checked)
	assert.Zero(t, result.Disconnected)

	total, err := f.logs.CountFiltered(ctx, repository.DisconnectionLogFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestQuotaEnforceIgnoresUsersWithoutQuota(t *testing.T) {
	f := newQuotaFixture(t, repository.QuotaNone, 0)
	ctx := context.Background()
	f.sessions.usage[f.user.ID] = repository.UsageTotals{InputOctets: 10 << 30}

	result, err := f.enforcer.Enforce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Checked)
	assert.Zero(t, result.Disconnected)
}

func TestQuotaEnforceDeactivatedPromotionExpires(t *testing.T) {
	f := newQuotaFixture(t, repository.QuotaVolume, 1<<30)
	ctx := context.Background()
	f.sessions.usage[f.user.ID] = repository.UsageTotals{InputOctets: 1 << 20}

	f.promotion.Active = false
	require.NoError(t, f.promotions.Update(ctx, f.promotion))

	result, err := f.enforcer.Enforce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Disconnected)

	log, err := f.logs.OpenForUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.DisconnectExpired, log.Reason)

	allowed, ok := f.provisioner.accessFor("jdoe")
	require.True(t, ok)
	assert.False(t, allowed)
}

func TestQuotaEnforceCoversEveryOpenSession(t *testing.T) {
	f := newQuotaFixture(t, repository.QuotaVolume, 1<<30)
	ctx := context.Background()
	f.sessions.usage[f.user.ID] = repository.UsageTotals{InputOctets: 2 << 30}

	// More open sessions than one listing page, every user over quota. A
	// pass that pages while it disconnects would miss the tail of the set.
	const extra = 220
	for i := 0; i < extra; i++ {
		user, err := f.users.Create(ctx, &repository.User{
			Username:        fmt.Sprintf("user-%03d", i),
			PromotionID:     f.user.PromotionID,
			RadiusActivated: true,
			Active:          true,
		})
		require.NoError(t, err)
		_, err = f.sessions.Create(ctx, &repository.Session{
			AcctSessionID: fmt.Sprintf("sess-%03d", i),
			UserID:        user.ID,
			Username:      user.Username,
			StartedAt:     time.Now().Add(-time.Hour).Unix(),
		})
		require.NoError(t, err)
		f.sessions.usage[user.ID] = repository.UsageTotals{InputOctets: 2 << 30}
	}

	result, err := f.enforcer.Enforce(ctx)
	require.NoError(t, err)
	assert.Equal(t, extra+1, result.Checked)
	assert.Equal(t, extra+1, result.Disconnected)
}
