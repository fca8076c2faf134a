package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAccountingFixture(t *testing.T) (AccountingService, *fakeSessionRepo, *fakeDeviceRepo, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	_, err := users.Create(context.Background(), &repository.User{
		Username: "jdoe",
		Active:   true,
	})
	require.NoError(t, err)

	sessions := newFakeSessionRepo()
	devices := newFakeDeviceRepo()
	svc := NewAccountingService(sessions, devices, users, nil, discardLogger())
	return svc, sessions, devices, users
}

func TestAccountingIngestStart(t *testing.T) {
	svc, sessions, devices, _ := newAccountingFixture(t)
	ctx := context.Background()

	err := svc.Ingest(ctx, AccountingRecord{
		StatusType:    AcctStatusStart,
		AcctSessionID: "sess-001",
		Username:      "jdoe",
		MAC:           "AA-BB-CC-DD-EE-FF",
		NASIPAddress:  "10.0.0.1",
		FramedIP:      "192.168.10.20",
		EventAt:       1700000000,
	})
	require.NoError(t, err)

	session, err := sessions.FindByAcctSessionID(ctx, "sess-001")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", session.Username)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", session.MAC)
	assert.Equal(t, int64(1700000000), session.StartedAt)
	assert.Zero(t, session.StoppedAt)

	// The device is learned from the first packet.
	device, err := devices.FindByMAC(ctx, "aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), device.FirstSeenAt)
	assert.True(t, device.Active)
}

func TestAccountingIngestDuplicateStart(t *testing.T) {
	svc, sessions, _, _ := newAccountingFixture(t)
	ctx := context.Background()

	record := AccountingRecord{
		StatusType:    AcctStatusStart,
		AcctSessionID: "sess-001",
		Username:      "jdoe",
		MAC:           "aa:bb:cc:dd:ee:ff",
		EventAt:       1700000000,
	}
	require.NoError(t, svc.Ingest(ctx, record))
	require.NoError(t, svc.Ingest(ctx, record))

	count, err := sessions.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAccountingIngestInterim(t *testing.T) {
	svc, sessions, _, _ := newAccountingFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Ingest(ctx, AccountingRecord{
		StatusType:    AcctStatusStart,
		AcctSessionID: "sess-002",
		Username:      "jdoe",
		MAC:           "aa:bb:cc:dd:ee:ff",
		EventAt:       1700000000,
	}))
	require.NoError(t, svc.Ingest(ctx, AccountingRecord{
		StatusType:    AcctStatusInterim,
		AcctSessionID: "sess-002",
		Username:      "jdoe",
		MAC:           "aa:bb:cc:dd:ee:ff",
		FramedIP:      "192.168.10.21",
		InputOctets:   1024,
		OutputOctets:  4096,
		EventAt:       1700000300,
	}))

	session, err := sessions.FindByAcctSessionID(ctx, "sess-002")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), session.InputOctets)
	assert.Equal(t, int64(4096), session.OutputOctets)
	assert.Equal(t, "192.168.10.21", session.FramedIP)
}

func TestAccountingIngestInterimReconstructsLostStart(t *testing.T) {
	svc, sessions, _, _ := newAccountingFixture(t)
	ctx := context.Background()

	err := svc.Ingest(ctx, AccountingRecord{
		StatusType:    AcctStatusInterim,
		AcctSessionID: "sess-lost",
		Username:      "jdoe",
		MAC:           "aa:bb:cc:dd:ee:ff",
		EventAt:       1700000000,
	})
	require.NoError(t, err)

	session, err := sessions.FindByAcctSessionID(ctx, "sess-lost")
	require.NoError(t, err)
	assert.Zero(t, session.StoppedAt)
}

func TestAccountingIngestStop(t *testing.T) {
	svc, sessions, _, _ := newAccountingFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Ingest(ctx, AccountingRecord{
		StatusType:    AcctStatusStart,
		AcctSessionID: "sess-003",
		Username:      "jdoe",
		MAC:           "aa:bb:cc:dd:ee:ff",
		EventAt:       1700000000,
	}))
	stop := AccountingRecord{
		StatusType:     AcctStatusStop,
		AcctSessionID:  "sess-003",
		Username:       "jdoe",
		MAC:            "aa:bb:cc:dd:ee:ff",
		InputOctets:    2048,
		OutputOctets:   8192,
		TerminateCause: "User-Request",
		EventAt:        1700003600,
	}
	require.NoError(t, svc.Ingest(ctx, stop))

	session, err := sessions.FindByAcctSessionID(ctx, "sess-003")
	require.NoError(t, err)
	assert.Equal(t, int64(1700003600), session.StoppedAt)
	assert.Equal(t, "User-Request", session.TerminateCause)
	assert.Equal(t, int64(2048), session.InputOctets)

	// A retransmitted Stop for an already closed session is a no-op.
	require.NoError(t, svc.Ingest(ctx, stop))
}

func TestAccountingIngestStopUnknownSession(t *testing.T) {
	svc, sessions, _, _ := newAccountingFixture(t)
	ctx := context.Background()

	err := svc.Ingest(ctx, AccountingRecord{
		StatusType:     AcctStatusStop,
		AcctSessionID:  "sess-ghost",
		Username:       "jdoe",
		MAC:            "aa:bb:cc:dd:ee:ff",
		SessionTime:    600,
		InputOctets:    100,
		OutputOctets:   200,
		TerminateCause: "Lost-Carrier",
		EventAt:        1700000600,
	})
	require.NoError(t, err)

	session, err := sessions.FindByAcctSessionID(ctx, "sess-ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), session.StartedAt)
	assert.Equal(t, int64(1700000600), session.StoppedAt)
	assert.Equal(t, "Lost-Carrier", session.TerminateCause)
	assert.Equal(t, int64(100), session.InputOctets)
}

func TestAccountingIngestRejectsBadInput(t *testing.T) {
	svc, _, _, _ := newAccountingFixture(t)
	ctx := context.Background()

	err := svc.Ingest(ctx, AccountingRecord{
		StatusType:    AcctStatusStart,
		AcctSessionID: "",
		Username:      "jdoe",
		MAC:           "aa:bb:cc:dd:ee:ff",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.Ingest(ctx, AccountingRecord{
		StatusType:    AcctStatusStart,
		AcctSessionID: "sess-004",
		Username:      "jdoe",
		MAC:           "not-a-mac",
	})
	assert.ErrorIs(t, err, ErrInvalidMAC)

	err = svc.Ingest(ctx, AccountingRecord{
		StatusType:    AcctStatusStart,
		AcctSessionID: "sess-005",
		Username:      "nobody",
		MAC:           "aa:bb:cc:dd:ee:ff",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Ingest(ctx, AccountingRecord{
		StatusType:    "Bogus",
		AcctSessionID: "sess-006",
		Username:      "jdoe",
		MAC:           "aa:bb:cc:dd:ee:ff",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
