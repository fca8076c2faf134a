package sqlite

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Valerdy/captive-portal-sub000/internal/migrations"
)

// newTestStore opens an in-memory database with the full schema applied. The
// pool is pinned to one connection because every in-memory connection gets its
// own database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.Up(db))
	return NewStore(db)
}
