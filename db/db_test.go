package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/fbstubs/errors"
)

func TestOpen(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer db.Close()

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, SQLiteBusyTimeoutMS, busyTimeout)
}

func TestOpenWithMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	db, err := OpenWithMigrations(dbPath, nil)
	require.NoError(t, err)

	var tables int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('schema_migrations', 'doc_blobs')").Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)
	require.NoError(t, db.Close())

	// Re-opening skips applied migrations
	db, err = OpenWithMigrations(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 2, applied)
}

func TestIsDatabaseClosed(t *testing.T) {
	assert.False(t, IsDatabaseClosed(nil))
	assert.True(t, IsDatabaseClosed(errors.Wrap(ErrDatabaseClosed, "get blob")))
	assert.True(t, IsDatabaseClosed(errors.New("sql: database is closed")))
	assert.False(t, IsDatabaseClosed(errors.New("disk full")))

	db, err := Open(filepath.Join(t.TempDir(), "cache.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	_, err = db.Exec("SELECT 1")
	assert.True(t, IsDatabaseClosed(err))
}
