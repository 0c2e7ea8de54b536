package services

import (
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/esquivelfacundo/gastrodash/models"
)

func setupServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
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

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// seedMenu inserts the standard test menu and returns it in catalog order
func seedMenu(t *testing.T, db *gorm.DB) []models.Product {
	t.Helper()

	products := []models.Product{
		{Name: "Arroz con Pollo", Price: decimal.NewFromInt(3500), Category: "platos", Available: true},
		{Name: "Paella Tradicional", Price: decimal.NewFromInt(4200), Category: "platos", Available: true},
		{Name: "Rabas", Price: decimal.NewFromInt(2800), Category: "entradas", Available: true},
		{Name: "Tortilla de Papa", Price: decimal.NewFromInt(2200), Category: "tortillas", Available: true},
		{Name: "Tortilla Española", Price: decimal.NewFromInt(2500), Category: "tortillas", Available: false},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("Failed to seed product: %v", err)
		}
	}
	return products
}

func strPtr(s string) *string {
	return &s
}
