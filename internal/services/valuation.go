package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/VictorEyeEagle/cadweb/internal/models"
)

// Tax rates applied on the order subtotal. Kept as exact decimal literals;
// float conversion would reintroduce the rounding drift this service exists
// to avoid.
var (
	icmsRate   = decimal.RequireFromString("0.18")
	ipiRate    = decimal.RequireFromString("0.05")
	pisRate    = decimal.RequireFromString("0.0165")
	cofinsRate = decimal.RequireFromString("0.076")
)

// ValuationService derives all money and identity values for an order from
// its loaded items and payments. Every method is a pure function over the
// aggregate; callers are expected to preload Items and Payments.
type ValuationService struct{}

func NewValuationService() *ValuationService { return &ValuationService{} }

// Subtotal sums quantity × captured unit price over the order's items.
// An order with no items totals zero.
func (s *ValuationService) Subtotal(o *models.Order) decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Total())
	}
	return total
}

func (s *ValuationService) ItemCount(o *models.Order) int { return len(o.Items) }

// TotalPaid sums the amounts of all payments recorded against the order.
func (s *ValuationService) TotalPaid(o *models.Order) decimal.Decimal {
	total := decimal.Zero
	for i := range o.Payments {
		total = total.Add(o.Payments[i].Amount)
	}
	return total
}

// BalanceDue is subtotal minus total paid. Negative when overpaid; that is
// allowed and left to the caller to interpret.
func (s *ValuationService) BalanceDue(o *models.Order) decimal.Decimal {
	return s.Subtotal(o).Sub(s.TotalPaid(o))
}

// DateKey returns the order date as YYYYMMDD. ok is false when the order has
// no timestamp yet.
func (s *ValuationService) DateKey(o *models.Order) (string, bool) {
	if o.OrderedAt.IsZero() {
		return "", false
	}
	return o.OrderedAt.Format("20060102"), true
}

// AccessKey builds the digits-only reference code printed on order documents.
// It is derived from the order id, the date key, and a sha256 digest of the
// two concatenated, keeping only decimal digits. Deterministic for a persisted
// order; ok is false before the order has an id and a timestamp.
func (s *ValuationService) AccessKey(o *models.Order) (string, bool) {
	dateKey, ok := s.DateKey(o)
	if o.ID == 0 || !ok {
		return "", false
	}
	id := strconv.FormatUint(uint64(o.ID), 10)
	sum := sha256.Sum256([]byte(id + dateKey))
	raw := dateKey + id + hex.EncodeToString(sum[:])
	key := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			key = append(key, raw[i])
		}
	}
	return string(key), true
}

// ICMS is 18% of the subtotal, rounded half up to 2 decimals.
func (s *ValuationService) ICMS(o *models.Order) decimal.Decimal {
	return s.Subtotal(o).Mul(icmsRate).Round(2)
}

// IPI is 5% of the subtotal, rounded half up to 2 decimals.
func (s *ValuationService) IPI(o *models.Order) decimal.Decimal {
	return s.Subtotal(o).Mul(ipiRate).Round(2)
}

// PIS is 1.65% of the subtotal, rounded half up to 2 decimals.
func (s *ValuationService) PIS(o *models.Order) decimal.Decimal {
	return s.Subtotal(o).Mul(pisRate).Round(2)
}

// COFINS is 7.6% of the subtotal, rounded half up to 2 decimals.
func (s *ValuationService) COFINS(o *models.Order) decimal.Decimal {
	return s.Subtotal(o).Mul(cofinsRate).Round(2)
}

// TotalTaxes sums the four tax lines and rounds half up to 3 decimals.
// The 3-decimal precision differs from every other monetary field; the legacy
// system behaves this way and downstream consumers may rely on the extra
// digit, so it is preserved rather than corrected.
func (s *ValuationService) TotalTaxes(o *models.Order) decimal.Decimal {
	taxes := s.ICMS(o).Add(s.IPI(o)).Add(s.PIS(o)).Add(s.COFINS(o))
	return taxes.Round(3)
}

// FinalValue is subtotal plus total taxes, rounded half up to 2 decimals.
func (s *ValuationService) FinalValue(o *models.Order) decimal.Decimal {
	return s.Subtotal(o).Add(s.TotalTaxes(o)).Round(2)
}

// Valuation is the full derived block for an order, as served on the order
// detail endpoint. DateKey and AccessKey are omitted while undefined.
type Valuation struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	ItemCount  int             `json:"item_count"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	BalanceDue decimal.Decimal `json:"balance_due"`
	ICMS       decimal.Decimal `json:"icms"`
	IPI        decimal.Decimal `json:"ipi"`
	PIS        decimal.Decimal `json:"pis"`
	COFINS     decimal.Decimal `json:"cofins"`
	TotalTaxes decimal.Decimal `json:"total_taxes"`
	FinalValue decimal.Decimal `json:"final_value"`
	DateKey    string          `json:"date_key,omitempty"`
	AccessKey  string          `json:"access_key,omitempty"`
}

// Valuate computes every derivation at once.
func (s *ValuationService) Valuate(o *models.Order) Valuation {
	v := Valuation{
		Subtotal:   s.Subtotal(o),
		ItemCount:  s.ItemCount(o),
		TotalPaid:  s.TotalPaid(o),
		BalanceDue: s.BalanceDue(o),
		ICMS:       s.ICMS(o),
		IPI:        s.IPI(o),
		PIS:        s.PIS(o),
		COFINS:     s.COFINS(o),
		TotalTaxes: s.TotalTaxes(o),
		FinalValue: s.FinalValue(o),
	}
	if dk, ok := s.DateKey(o); ok {
		v.DateKey = dk
	}
	if ak, ok := s.AccessKey(o); ok {
		v.AccessKey = ak
	}
	return v
}
