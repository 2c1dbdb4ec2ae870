package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod codes match the legacy database values.
type PaymentMethod int

const (
	MethodCash PaymentMethod = iota + 1
	MethodCredit
	MethodDebit
	MethodPix
	MethodVoucher
	MethodOther
)

var methodLabels = map[PaymentMethod]string{
	MethodCash:    "Dinheiro",
	MethodCredit:  "Crédito",
	MethodDebit:   "Débito",
	MethodPix:     "Pix",
	MethodVoucher: "Ticket",
	MethodOther:   "Outra",
}

func (m PaymentMethod) String() string {
	if label, ok := methodLabels[m]; ok {
		return label
	}
	return fmt.Sprintf("PaymentMethod(%d)", int(m))
}

func (m PaymentMethod) Valid() bool {
	_, ok := methodLabels[m]
	return ok
}

// Payment records money received against an order. Immutable after creation:
// there is no update path, only create and cascade delete with the order.
type Payment struct {
	ID      uint            `gorm:"primaryKey" json:"id"`
	OrderID uint            `gorm:"not null;index" json:"order_id"`
	Method  PaymentMethod   `gorm:"not null" json:"method"`
	Amount  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	// PaidAt is set once when the payment is recorded.
	PaidAt    time.Time `json:"paid_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaidAtBR returns the payment timestamp as DD/MM/YYYY HH:MM, or "" when unset.
func (p *Payment) PaidAtBR() string {
	if p.PaidAt.IsZero() {
		return ""
	}
	return p.PaidAt.Format("02/01/2006 15:04")
}
