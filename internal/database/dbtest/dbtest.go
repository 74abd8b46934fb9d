// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/database"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated SQLite database stored in t.TempDir. It is closed
// when the test finishes.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
