package dbx

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

var testMigrations = fstest.MapFS{
	"00001_create_t.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE widgets (id INTEGER PRIMARY KEY, v TEXT NOT NULL);

-- +goose Down
DROP TABLE widgets;
`)},
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpenSQLite_CreatesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE __scratch (id INTEGER PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestOpenSQLite_BadPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "app.db"))
	require.Error(t, err)
}

func TestRunMigrations_AppliesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db, testMigrations))
	require.NoError(t, RunMigrations(ctx, db, testMigrations), "second run must be a no-op")

	require.True(t, tableExists(t, db, "widgets"))
	require.True(t, tableExists(t, db, "goose_db_version"))
}
