// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"germanclash/internal/database"
	"germanclash/migrations"
)

// NewDB returns a migrated SQLite database in a temp dir, closed on cleanup
func NewDB(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// CreateUser inserts an account and returns its id
func CreateUser(t testing.TB, db *database.DB, email string) int64 {
	t.Helper()

	id, err := db.ExecReturningID(context.Background(),
		"INSERT INTO users (email, name) VALUES (?, ?)", email, email)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return id
}
