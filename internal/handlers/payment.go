package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VictorEyeEagle/cadweb/internal/httpx"
	"github.com/VictorEyeEagle/cadweb/internal/models"
	"github.com/VictorEyeEagle/cadweb/internal/services"
	"github.com/VictorEyeEagle/cadweb/internal/validation"
)

type PaymentHandler struct {
	DB  *gorm.DB
	Svc *services.ValuationService
}

func NewPaymentHandler(db *gorm.DB, svc *services.ValuationService) *PaymentHandler {
	return &PaymentHandler{DB: db, Svc: svc}
}

// List: GET /orders/{id}/payments – with a running balance for the order.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var order models.Order
	if err := h.DB.Preload("Items").Preload("Payments").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "order_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_order", nil)
		return
	}
	items := make([]map[string]any, 0, len(order.Payments))
	for i := range order.Payments {
		p := &order.Payments[i]
		items = append(items, map[string]any{
			"id":           p.ID,
			"method":       p.Method,
			"method_label": p.Method.String(),
			"amount":       p.Amount,
			"paid_at":      p.PaidAt,
			"paid_at_br":   p.PaidAtBR(),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":       items,
		"total_paid":  h.Svc.TotalPaid(&order),
		"balance_due": h.Svc.BalanceDue(&order),
	})
}

// Create: POST /orders/{id}/payments. Payments are immutable once recorded;
// there is no update or single delete, only cascade with the order.
// Overpayment is allowed, the balance just goes negative.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var count int64
	h.DB.Model(&models.Order{}).Where("id = ?", id).Count(&count)
	if count == 0 {
		httpx.JSONError(w, http.StatusNotFound, "order_not_found", nil)
		return
	}
	var in struct {
		Method int    `json:"method"`
		Amount string `json:"amount"`
	}
	if wantsJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
			return
		}
		in.Method = formInt(r, "method")
		in.Amount = r.Form.Get("amount")
	}
	v := validation.Violations{}
	method := models.PaymentMethod(in.Method)
	if !method.Valid() {
		v["method"] = "unknown_method"
	}
	amount := decimal.Zero
	if in.Amount == "" {
		v["amount"] = "required"
	} else if parsed, err := decimal.NewFromString(in.Amount); err != nil {
		v["amount"] = "invalid_decimal"
	} else {
		amount = parsed
		validation.PositiveDecimal("amount", amount, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	payment := models.Payment{OrderID: id, Method: method, Amount: amount, PaidAt: time.Now()}
	if err := h.DB.Create(&payment).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_payment", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}
