package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sayevvv/LearnUp-sub001/internal/data/db"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

// DB opens a private in-memory SQLite database with the full schema migrated. Each
// call gets its own database, closed when the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	svc, err := db.NewService(Logger(tb), db.Config{Driver: db.DriverSQLite, DSN: dsn})
	if err != nil {
		tb.Fatalf("failed to init test db: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	tb.Cleanup(func() { _ = svc.Close() })
	return svc.DB()
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
