// Package testutil wires the global database connection to an isolated
// in-memory SQLite instance for tests.
package testutil

import (
	"testing"

	"github.com/Sean-Pereira-945/TaskManager/db"
	"github.com/Sean-Pereira-945/TaskManager/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB replaces db.DB with a fresh in-memory database for the duration
// of the test. The pool is pinned to a single connection so every query sees
// the same memory database.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})

	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()

	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Task{},
		&models.ReminderLog{},
	)

	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	prev := db.DB
	db.DB = gdb

	t.Cleanup(func() {
		db.DB = prev
		sqlDB.Close()
	})

	return gdb
}

// CreateUser inserts a user row directly.
func CreateUser(t *testing.T, name, email string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
	}

	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}

	return user
}
