package database

import (
	"gorm.io/gorm"

	"github.com/stackitdev/stackit/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
// Order matters only for readability; the schema carries no foreign keys.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Question{},
		&models.Answer{},
		&models.Vote{},
		&models.Notification{},
	)
}
