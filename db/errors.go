package db

import (
	"strings"

	"github.com/teranos/fbstubs/errors"
)

// ErrDatabaseClosed is returned when the cache database is used after Close.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is closed,
// either ErrDatabaseClosed or the raw driver message.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}
