package services

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"linkmanager/internal/models"
	"linkmanager/internal/storage"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&storage.KVEntry{}, &models.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func setupTestStore(t *testing.T) storage.Store {
	return storage.NewGormStore(setupTestDB(t))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// fixedClock pins a service to one instant so date math is stable.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
