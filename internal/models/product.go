package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	CategoryID uint            `gorm:"not null;index" json:"category_id"`
	Category   Category        `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category"`
	// Optional product image, base64 encoded as uploaded by the form.
	ImageBase64 string    `json:"image_base64,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stock is the on-hand quantity for a product. One row per product, created on
// demand with quantity 0. Quantity may go negative; no floor is enforced.
type Stock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
