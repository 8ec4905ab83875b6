// Package testutil provides shared helpers for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"squadup/backend/internal/database"
	"squadup/backend/internal/models"
)

// SetupTestDB opens a fresh in-memory SQLite database and runs migrations.
// Each call gets its own uniquely named database so tests do not share state.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "SetupTestDB: open")
	require.NoError(t, database.Migrate(db), "SetupTestDB: migrate")
	return db
}

// CreateUser inserts a user with the given username and returns it.
// Passwords are hashed with the minimum bcrypt cost to keep tests fast.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err, "CreateUser: hash")

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(&user).Error, "CreateUser: insert")
	return user
}

// CreateGame inserts a game with the given name and returns it.
func CreateGame(t *testing.T, db *gorm.DB, name string) models.Game {
	t.Helper()

	game := models.Game{Name: name}
	require.NoError(t, db.Create(&game).Error, "CreateGame: insert")
	return game
}
