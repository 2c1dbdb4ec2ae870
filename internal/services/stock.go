package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/VictorEyeEagle/cadweb/internal/models"
)

// StockService owns stock rows. A product gets its stock row lazily, on first
// access, with quantity 0.
type StockService struct {
	DB *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService { return &StockService{DB: db} }

// GetOrCreate returns the stock row for a product, creating it with quantity 0
// when absent. The insert races safely under concurrent first access: the
// unique index on product_id plus ON CONFLICT DO NOTHING guarantees a single
// row, and the follow-up read returns whichever insert won.
func (s *StockService) GetOrCreate(productID uint) (*models.Stock, error) {
	row := models.Stock{ProductID: productID, Quantity: 0}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create stock for product %d: %w", productID, err)
	}
	var stock models.Stock
	if err := s.DB.Where("product_id = ?", productID).First(&stock).Error; err != nil {
		return nil, fmt.Errorf("load stock for product %d: %w", productID, err)
	}
	return &stock, nil
}

// Adjust adds delta to the product's stock quantity and returns the updated
// row. Delta may be negative and the quantity may go below zero; no floor is
// enforced.
func (s *StockService) Adjust(productID uint, delta int) (*models.Stock, error) {
	stock, err := s.GetOrCreate(productID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(stock).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error; err != nil {
		return nil, fmt.Errorf("adjust stock for product %d: %w", productID, err)
	}
	if err := s.DB.First(stock, stock.ID).Error; err != nil {
		return nil, fmt.Errorf("reload stock for product %d: %w", productID, err)
	}
	return stock, nil
}
