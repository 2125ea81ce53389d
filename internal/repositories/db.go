package repositories

import (
	"log"

	"github.com/rohits-web03/robotutor/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection and runs migrations.
// TranslateError is required so the store can map constraint violations
// to the application error taxonomy without driver-specific checks.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Println("Successfully connected to database")
	return db, nil
}

// Migrate creates or updates the five core tables. Exported so tests can
// run the same schema against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Session{},
		&models.UserProfile{},
		&models.ChatMessage{},
	)
}
