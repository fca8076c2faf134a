package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

func TestRadiusReplaceForOwner(t *testing.T) {
	store := newTestStore(t)
	radius := store.Radius()
	ctx := context.Background()

	require.NoError(t, radius.ReplaceForOwner(ctx, repository.RadiusOwnerUser, "jdoe", repository.RadiusScopeCheck,
		[]repository.RadiusAttribute{
			{Attribute: "Cleartext-Password", Op: ":=", Value: "s3cret"},
		}))
	require.NoError(t, radius.ReplaceForOwner(ctx, repository.RadiusOwnerUser, "jdoe", repository.RadiusScopeReply,
		[]repository.RadiusAttribute{
			{Attribute: "WISPr-Bandwidth-Max-Down", Value: "2048000"},
		}))

	attrs, err := radius.ListForOwner(ctx, repository.RadiusOwnerUser, "jdoe")
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, "Cleartext-Password", attrs[0].Attribute)
	assert.Equal(t, repository.RadiusScopeCheck, attrs[0].Scope)
	assert.Equal(t, "WISPr-Bandwidth-Max-Down", attrs[1].Attribute)
	// The default operator is applied when none is given.
	assert.Equal(t, ":=", attrs[1].Op)

	// Replacing swaps the old rows for the new set.
	require.NoError(t, radius.ReplaceForOwner(ctx, repository.RadiusOwnerUser, "jdoe", repository.RadiusScopeCheck,
		[]repository.RadiusAttribute{
			{Attribute: "Cleartext-Password", Op: ":=", Value: "s3cret"},
			{Attribute: "Auth-Type", Op: ":=", Value: "Reject"},
		}))
	attrs, err = radius.ListForOwner(ctx, repository.RadiusOwnerUser, "jdoe")
	require.NoError(t, err)
	assert.Len(t, attrs, 3)
}

func TestRadiusGroupAttributes(t *testing.T) {
	store := newTestStore(t)
	radius := store.Radius()
	ctx := context.Background()

	require.NoError(t, radius.ReplaceForOwner(ctx, repository.RadiusOwnerGroup, "L3-2026", repository.RadiusScopeReply,
		[]repository.RadiusAttribute{
			{Attribute: "WISPr-Bandwidth-Max-Down", Value: "4096000"},
			{Attribute: "Session-Timeout", Value: "7200"},
		}))

	attrs, err := radius.ListForOwner(ctx, repository.RadiusOwnerGroup, "L3-2026")
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, repository.RadiusOwnerGroup, attrs[0].OwnerType)

	// User tables are untouched by group writes.
	userAttrs, err := radius.ListForOwner(ctx, repository.RadiusOwnerUser, "L3-2026")
	require.NoError(t, err)
	assert.Empty(t, userAttrs)

	require.NoError(t, radius.DeleteForOwner(ctx, repository.RadiusOwnerGroup, "L3-2026"))
	attrs, err = radius.ListForOwner(ctx, repository.RadiusOwnerGroup, "L3-2026")
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestRadiusUserGroupMembership(t *testing.T) {
	store := newTestStore(t)
	radius := store.Radius()
	ctx := context.Background()

	require.NoError(t, radius.SetUserGroup(ctx, "jdoe", "L3-2026"))
	// Reassignment keeps a single membership row.
	require.NoError(t, radius.SetUserGroup(ctx, "jdoe", "M1-2026"))

	var groupname string
	err := store.db.QueryRowContext(ctx,
		`SELECT groupname FROM radusergroup WHERE username = ?`, "jdoe").Scan(&groupname)
	require.NoError(t, err)
	assert.Equal(t, "M1-2026", groupname)

	var count int
	err = store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM radusergroup WHERE username = ?`, "jdoe").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, radius.RemoveUserGroup(ctx, "jdoe"))
	err = store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM radusergroup WHERE username = ?`, "jdoe").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}
