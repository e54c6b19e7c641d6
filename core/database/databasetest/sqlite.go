// Package databasetest opens throwaway SQLite databases with the production schema.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"book-my-session/core/constants"
	"book-my-session/core/database"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// NewSQLite returns a migrated database backed by a file in t.TempDir().
func NewSQLite(t *testing.T) *database.Database {
	t.Helper()

	cfg := database.DatabaseConfig{
		Driver: constants.DatabaseDriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := sqlx.Open(constants.DatabaseDriverSQLite, cfg.DSN())
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	require.NoError(t, database.RunMigrations(db.DB, constants.DatabaseDriverSQLite))

	t.Cleanup(func() { _ = db.Close() })
	return database.New(db)
}

// SeedUser inserts a user row and returns its id.
func SeedUser(t *testing.T, db database.IDatabase, first, email, role string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO users (id, first_name, last_name, email, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, first, "Tester", email, role, time.Now().UTC(), time.Now().UTC())
	require.NoError(t, err)
	return id
}
