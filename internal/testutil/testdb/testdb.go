// Package testdb opens migrated SQLite databases for tests.
package testdb

import (
	"path/filepath"
	"testing"

	"flexemi-backend/internal/infrastructure/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a private in-memory database on a single connection.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	gdb := open(t, ":memory:")
	sqlDB, _ := gdb.DB()
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	migrate(t, gdb)
	return gdb
}

// OpenShared returns a WAL database file in t.TempDir() served by conns
// connections, so goroutines really run their transactions side by side.
// Transactions begin IMMEDIATE: SQLite has no row locks, and a deferred
// reader upgrading to a writer would fail with SQLITE_BUSY instead of waiting.
func OpenShared(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shared.db")
	gdb := open(t, "file:"+path+"?_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate")
	sqlDB, _ := gdb.DB()
	sqlDB.SetMaxOpenConns(conns)
	sqlDB.SetMaxIdleConns(conns)
	migrate(t, gdb)
	return gdb
}

func open(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func migrate(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
}
