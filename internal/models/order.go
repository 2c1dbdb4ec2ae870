package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the workflow state of an order. Numeric codes match the
// legacy database values; any status may be set, no transition graph is
// enforced at this layer.
type OrderStatus int

const (
	StatusNew OrderStatus = iota + 1
	StatusInProgress
	StatusCompleted
	StatusCancelled
)

var statusLabels = map[OrderStatus]string{
	StatusNew:        "Novo",
	StatusInProgress: "Em Andamento",
	StatusCompleted:  "Concluído",
	StatusCancelled:  "Cancelado",
}

func (s OrderStatus) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("OrderStatus(%d)", int(s))
}

func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

type Order struct {
	ID       uint        `gorm:"primaryKey" json:"id"`
	ClientID uint        `gorm:"not null;index" json:"client_id"`
	Client   Client      `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client"`
	Status   OrderStatus `gorm:"not null;default:1" json:"status"`
	// OrderedAt is set once when the order is created and never updated.
	OrderedAt time.Time   `json:"ordered_at"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Payments  []Payment   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payments"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderedAtBR returns the order timestamp as DD/MM/YYYY HH:MM, or "" when unset.
func (o *Order) OrderedAtBR() string {
	if o.OrderedAt.IsZero() {
		return ""
	}
	return o.OrderedAt.Format("02/01/2006 15:04")
}

// OrderItem is one product line within an order. Price is the unit price
// captured when the line was added; historical totals must never be
// recomputed from the product's current price.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Total is the line amount, quantity times the captured unit price.
func (it *OrderItem) Total() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
