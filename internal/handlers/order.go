package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/VictorEyeEagle/cadweb/internal/httpx"
	"github.com/VictorEyeEagle/cadweb/internal/models"
	"github.com/VictorEyeEagle/cadweb/internal/services"
	"github.com/VictorEyeEagle/cadweb/internal/validation"
)

type OrderHandler struct {
	DB  *gorm.DB
	Svc *services.ValuationService
}

func NewOrderHandler(db *gorm.DB, svc *services.ValuationService) *OrderHandler {
	return &OrderHandler{DB: db, Svc: svc}
}

// List: GET /orders – newest first, client preloaded, optional status filter.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	dbq := h.DB.Model(&models.Order{})
	if v := r.URL.Query().Get("status"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !models.OrderStatus(n).Valid() {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
			return
		}
		dbq = dbq.Where("status = ?", n)
	}
	var total int64
	dbq.Count(&total)
	var orders []models.Order
	if err := dbq.Preload("Client").Preload("Items").Order("id desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_orders", nil)
		return
	}
	items := make([]map[string]any, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		items = append(items, map[string]any{
			"id":            o.ID,
			"client":        o.Client,
			"status":        o.Status,
			"status_label":  o.Status.String(),
			"ordered_at":    o.OrderedAt,
			"ordered_at_br": o.OrderedAtBR(),
			"item_count":    h.Svc.ItemCount(o),
			"subtotal":      h.Svc.Subtotal(o),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
}

type orderItemReq struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"` // optional; defaults to the product's current price
}

type orderCreateReq struct {
	ClientID uint           `json:"client_id"`
	Items    []orderItemReq `json:"items"`
}

// Create: POST /orders – order plus line items in one transaction. Each line
// captures the product's current price unless an explicit price is given; the
// snapshot is what historical totals are computed from.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req orderCreateReq
	if wantsJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		// form fallback: single item per request
		if err := r.ParseForm(); err == nil {
			req.ClientID = formUint(r, "client_id")
			if pid := formUint(r, "product_id"); pid != 0 {
				qty := formInt(r, "quantity")
				if qty == 0 {
					qty = 1
				}
				req.Items = []orderItemReq{{ProductID: pid, Quantity: qty, Price: r.Form.Get("price")}}
			}
		}
	}

	v := validation.Violations{}
	if req.ClientID == 0 {
		v["client_id"] = "required"
	}
	if len(req.Items) == 0 {
		v["items"] = "required"
	}
	for _, it := range req.Items {
		if it.ProductID == 0 {
			v["items"] = "invalid_product"
		}
		validation.PositiveInt("items", it.Quantity, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var count int64
	h.DB.Model(&models.Client{}).Where("id = ?", req.ClientID).Count(&count)
	if count == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_client", nil)
		return
	}

	// an order may repeat a product across lines (e.g. one at the snapshot
	// price, one at an override), so validate against distinct ids only
	productIDs := make([]uint, 0, len(req.Items))
	seen := make(map[uint]bool, len(req.Items))
	for _, it := range req.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			productIDs = append(productIDs, it.ProductID)
		}
	}
	var products []models.Product
	if err := h.DB.Where("id IN ?", productIDs).Find(&products).Error; err != nil || len(products) != len(productIDs) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_products", nil)
		return
	}
	priceByID := make(map[uint]decimal.Decimal, len(products))
	for _, p := range products {
		priceByID[p.ID] = p.Price
	}

	order := models.Order{ClientID: req.ClientID, Status: models.StatusNew, OrderedAt: time.Now()}
	for _, it := range req.Items {
		price := priceByID[it.ProductID]
		if it.Price != "" {
			parsed, err := decimal.NewFromString(it.Price)
			pv := validation.Violations{}
			if err != nil {
				pv["items"] = "invalid_price"
			} else {
				validation.NonNegativeDecimal("items", parsed, pv)
			}
			if !pv.Empty() {
				httpx.JSONError(w, http.StatusBadRequest, "validation_failed", pv)
				return
			}
			price = parsed
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     price,
		})
	}
	if err := h.DB.Create(&order).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_order", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": order.ID, "status": order.Status, "ordered_at": order.OrderedAt})
}

func (h *OrderHandler) load(id uint) (*models.Order, error) {
	var order models.Order
	err := h.DB.Preload("Client").Preload("Items.Product").Preload("Payments").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Detail: GET /orders/{id} – the aggregate plus the full valuation block.
func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	order, err := h.load(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "order_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_order", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"order":         order,
		"status_label":  order.Status.String(),
		"ordered_at_br": order.OrderedAtBR(),
		"valuation":     h.Svc.Valuate(order),
	})
}

// UpdateStatus: PUT /orders/{id} – status only. Any known status may be set;
// there is no enforced transition graph. OrderedAt is never touched.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "order_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_order", nil)
		return
	}
	var in struct {
		Status int `json:"status"`
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
		in.Status = formInt(r, "status")
	}
	status := models.OrderStatus(in.Status)
	if !status.Valid() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"status": "unknown_status"})
		return
	}
	if err := h.DB.Model(&order).Update("status", status).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_order", nil)
		return
	}
	order.Status = status
	httpx.JSON(w, http.StatusOK, map[string]any{"id": order.ID, "status": order.Status, "status_label": order.Status.String()})
}

// Delete: DELETE /orders/{id} – items and payments go with the order.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "order_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_order", nil)
		return
	}
	if err := h.DB.Select(clause.Associations).Delete(&order).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_order", nil)
		return
	}
	httpx.NoContent(w)
}
