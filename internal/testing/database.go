// Package testing holds helpers shared by package tests.
package testing

import (
	"database/sql"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/teranos/fbstubs/db"
)

// CreateTestDB creates an in-memory SQLite database with every migration
// applied. Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(":memory:", zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	// Each connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)

	t.Cleanup(func() {
		conn.Close()
	})

	if err := db.Migrate(conn, zaptest.NewLogger(t).Sugar()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return conn
}
