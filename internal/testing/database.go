// Package testing provides shared database helpers for package tests.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/awtools/aw-analyzer/db"
)

// OpenMigratedDB opens a temp-dir usage database with the full schema
// applied, so tracker SQL runs against the same pragmas and tables as
// production. Cleanup closes it.
func OpenMigratedDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenWithMigrations(filepath.Join(t.TempDir(), "usage.db"), nil)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}
