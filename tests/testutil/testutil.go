package testutil

import (
	"io"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/esquivelfacundo/gastrodash/models"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development
// databases. It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test and fails if it cannot be set.
// Use this in TestMain or suite setup functions.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
	if os.Getenv("GO_ENV") != "test" {
		t.Fatal("Failed to verify GO_ENV=test")
	}
}

// SetupTestDB opens an in-memory SQLite database and migrates every model
// the pipeline touches.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	RequireTestEnvironment(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.ConversationTurn{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.AccountingEntry{},
		&models.NotificationOutbox{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// NewTestLogger returns a logger that discards all output so test runs
// stay readable.
func NewTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// SeedMenu inserts a small, realistic restaurant menu and returns the
// created products.
func SeedMenu(t *testing.T, db *gorm.DB) []models.Product {
	t.Helper()

	products := []models.Product{
		{Name: "Arroz con Pollo", Category: "Platos", Price: decimal.NewFromInt(3500), Available: true},
		{Name: "Paella Tradicional", Category: "Platos", Price: decimal.NewFromInt(4200), Available: true},
		{Name: "Rabas", Category: "Entradas", Price: decimal.NewFromInt(2800), Available: true},
		{Name: "Tortilla de Papa", Category: "Entradas", Price: decimal.NewFromInt(2200), Available: true},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("Failed to seed menu: %v", err)
		}
	}
	return products
}
