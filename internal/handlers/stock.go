package handlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/VictorEyeEagle/cadweb/internal/httpx"
	"github.com/VictorEyeEagle/cadweb/internal/models"
	"github.com/VictorEyeEagle/cadweb/internal/services"
)

type StockHandler struct {
	DB  *gorm.DB
	Svc *services.StockService
}

func NewStockHandler(db *gorm.DB, svc *services.StockService) *StockHandler {
	return &StockHandler{DB: db, Svc: svc}
}

func (h *StockHandler) productExists(id uint) bool {
	var count int64
	h.DB.Model(&models.Product{}).Where("id = ?", id).Count(&count)
	return count > 0
}

// Get: GET /products/{id}/stock – creates the row with quantity 0 on first
// access.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if !h.productExists(id) {
		httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
		return
	}
	stock, err := h.Svc.GetOrCreate(id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_stock", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, stock)
}

// Adjust: POST /products/{id}/stock – applies a delta, negative allowed.
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if !h.productExists(id) {
		httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
		return
	}
	var in struct {
		Delta int `json:"delta"`
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
		in.Delta = formInt(r, "delta")
	}
	stock, err := h.Svc.Adjust(id, in.Delta)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_adjust_stock", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, stock)
}
