package testutil

import (
	"context"
	"database/sql"
	"io"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyflash/internal/db"
	"github.com/vytor/studyflash/internal/logger"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is pinned to one connection so every query sees the same memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.Migrate(context.Background(), sqlDB, QuietLogger())
	require.NoError(t, err, "failed to apply migrations")

	return sqlDB
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *logger.Logger {
	return logger.New(logger.WithOutput(io.Discard), logger.WithLevel(logger.ERROR))
}

// CreateProfile inserts a profile and returns its id.
func CreateProfile(t *testing.T, sqlDB *sql.DB, username string, tzOffsetMinutes int) int64 {
	res, err := sqlDB.Exec(`INSERT INTO profiles (username, tz_offset_minutes) VALUES (?, ?)`, username, tzOffsetMinutes)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// CreateDeck inserts a deck for profileID and returns its id.
func CreateDeck(t *testing.T, sqlDB *sql.DB, profileID int64, name string) int64 {
	res, err := sqlDB.Exec(`INSERT INTO decks (profile_id, name) VALUES (?, ?)`, profileID, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
