package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
	"github.com/Valerdy/captive-portal-sub000/internal/security"
)

func newDisconnectionFixture(t *testing.T) (DisconnectionService, *fakeLogRepo, *fakeUserRepo, *fakeProvisioner, *repository.User) {
	t.Helper()
	ctx := context.Background()

	users := newFakeUserRepo()
	user, err := users.Create(ctx, &repository.User{
		Username:        "jdoe",
		RadiusActivated: false,
		Active:          true,
	})
	require.NoError(t, err)

	logs := newFakeLogRepo()
	provisioner := newFakeProvisioner()
	svc := NewDisconnectionService(logs, users, provisioner, security.NewLoggerRecorder(nil))
	return svc, logs, users, provisioner, user
}

func TestDisconnectionReactivate(t *testing.T) {
	svc, logs, users, provisioner, user := newDisconnectionFixture(t)
	ctx := context.Background()

	log, err := logs.Create(ctx, &repository.DisconnectionLog{
		UserID:         user.ID,
		Username:       user.Username,
		Reason:         repository.DisconnectQuotaExceeded,
		DisconnectedAt: time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	restored, err := svc.Reactivate(ctx, log.ID, "admin")
	require.NoError(t, err)
	assert.NotZero(t, restored.ReconnectedAt)
	assert.Equal(t, "admin", restored.ReactivatedBy)

	allowed, ok := provisioner.accessFor("jdoe")
	require.True(t, ok)
	assert.True(t, allowed)

	refreshed, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.RadiusActivated)

	// The second restore is rejected so two admins cannot race.
	_, err = svc.Reactivate(ctx, log.ID, "other-admin")
	assert.ErrorIs(t, err, ErrAlreadyReactivated)
}

func TestDisconnectionReactivateUnknownLog(t *testing.T) {
	svc, _, _, _, _ := newDisconnectionFixture(t)
	_, err := svc.Reactivate(context.Background(), 999, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDisconnectionStats(t *testing.T) {
	svc, logs, _, _, user := newDisconnectionFixture(t)
	ctx := context.Background()
	now := time.Now().Unix()

	for _, log := range []*repository.DisconnectionLog{
		{UserID: user.ID, Username: user.Username, Reason: repository.DisconnectQuotaExceeded, DisconnectedAt: now - 60},
		{UserID: user.ID, Username: user.Username, Reason: repository.DisconnectAdmin, DisconnectedAt: now - 120, ReconnectedAt: now - 30},
		{UserID: user.ID, Username: user.Username, Reason: repository.DisconnectQuotaExceeded, DisconnectedAt: now - 48*3600},
	} {
		_, err := logs.Create(ctx, log)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Active)
	assert.Equal(t, int64(1), stats.ByReason[repository.DisconnectQuotaExceeded])
	assert.Equal(t, int64(1), stats.ByReason[repository.DisconnectAdmin])

	// A zero window means all time.
	allTime, err := svc.Stats(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), allTime.Total)
}
