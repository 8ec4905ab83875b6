package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"squadup/backend/internal/models"
)

// Connect opens the database and runs migrations. The handle is returned
// rather than stored in a package variable so the relationship services can
// be constructed against any database, including the in-memory one used in
// tests.
func Connect(dsn string) (*gorm.DB, error) {
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: customLogger,
		// Unique-constraint violations become gorm.ErrDuplicatedKey, which
		// the relation services map to typed conflicts.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Group{},
		&models.GroupMember{},
		&models.GameSession{},
		&models.SessionParticipant{},
		&models.Game{},
		&models.Tag{},
		&models.Store{},
		&models.RateWindow{},
	)
}
