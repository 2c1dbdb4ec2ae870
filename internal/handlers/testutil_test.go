package handlers

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/VictorEyeEagle/cadweb/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.Exec("PRAGMA foreign_keys = ON")
	if err := db.AutoMigrate(&models.Category{}, &models.Client{}, &models.Product{},
		&models.Stock{}, &models.Order{}, &models.OrderItem{}, &models.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seed minimal category/client/product rows for order flows
func seedFixtures(t *testing.T, db *gorm.DB) (cat models.Category, client models.Client, product models.Product) {
	t.Helper()
	cat = models.Category{Name: "Bebidas", SortOrder: 1}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("category: %v", err)
	}
	client = models.Client{Name: "Maria Silva", TaxID: "123.456.789-00"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	product = models.Product{Name: "Café 250g", Price: mustDec(t, "10.00"), CategoryID: cat.ID}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	return
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}
