package cache

import (
	"context"
	"database/sql"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/teranos/fbstubs/db"
	"github.com/teranos/fbstubs/errors"
)

// SQLiteFile is the database name inside the cache directory.
const SQLiteFile = "cache.db"

// SQLiteStore keeps entries in the doc_blobs table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and migrates) <dir>/cache.db.
func OpenSQLiteStore(dir string, log *zap.SugaredLogger) (*SQLiteStore, error) {
	if _, err := NewFileStore(dir); err != nil {
		return nil, err
	}
	conn, err := db.OpenWithMigrations(filepath.Join(dir, SQLiteFile), log)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(conn), nil
}

// NewSQLiteStore uses an already migrated database.
func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: conn}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, "SELECT body FROM doc_blobs WHERE key = ?", key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, s.wrap(err, "get blob")
	}
	if body == nil {
		body = []byte{}
	}
	return body, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, body []byte) error {
	if body == nil {
		body = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO doc_blobs (key, body) VALUES (?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET body = excluded.body, fetched_at = CURRENT_TIMESTAMP",
		key, body)
	if err != nil {
		return s.wrap(err, "put blob")
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM doc_blobs")
	if err != nil {
		return 0, s.wrap(err, "clear blobs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.wrap(err, "clear blobs")
	}
	return int(n), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) wrap(err error, msg string) error {
	if db.IsDatabaseClosed(err) {
		return errors.Wrap(db.ErrDatabaseClosed, msg)
	}
	return errors.Wrap(err, msg)
}
