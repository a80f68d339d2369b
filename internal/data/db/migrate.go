package db

import (
	"gorm.io/gorm"

	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}
