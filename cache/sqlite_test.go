package cache

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/fbstubs/db"
	"github.com/teranos/fbstubs/errors"
	testutil "github.com/teranos/fbstubs/internal/testing"
)

func TestSQLiteStore_Sqlmock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	store := NewSQLiteStore(conn)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT body FROM doc_blobs WHERE key = \?`).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte("page")))
	mock.ExpectQuery(`SELECT body FROM doc_blobs WHERE key = \?`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO doc_blobs`).
		WithArgs("abc", []byte("page")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`DELETE FROM doc_blobs`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	body, ok, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "page", string(body))

	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "abc", []byte("page")))

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_DriverError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(`INSERT INTO doc_blobs`).WillReturnError(errors.New("disk I/O error"))

	err = NewSQLiteStore(conn).Put(context.Background(), "abc", []byte("page"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put blob")
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestSQLiteStore_Closed(t *testing.T) {
	store, err := OpenSQLiteStore(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, _, err = store.Get(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrDatabaseClosed))
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store := NewSQLiteStore(testutil.CreateTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Key("https://x.test/a.html"), []byte("a")))
	body, ok, err := store.Get(ctx, Key("https://x.test/a.html#frag"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", string(body))

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok, err = store.Get(ctx, Key("https://x.test/a.html"))
	require.NoError(t, err)
	assert.False(t, ok)
}
