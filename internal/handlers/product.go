package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VictorEyeEagle/cadweb/internal/httpx"
	"github.com/VictorEyeEagle/cadweb/internal/models"
	"github.com/VictorEyeEagle/cadweb/internal/validation"
)

type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

// List: GET /products – category preloaded, optional q filter on name.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	dbq := h.DB.Model(&models.Product{})
	if like := searchLike(r); like != "" {
		dbq = dbq.Where("lower(name) LIKE ?", like)
	}
	var total int64
	dbq.Count(&total)
	var products []models.Product
	if err := dbq.Preload("Category").Order("id desc").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": limit, "offset": offset})
}

type productInput struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	CategoryID  uint   `json:"category_id"`
	ImageBase64 string `json:"image_base64"`
}

func (h *ProductHandler) decode(r *http.Request) (productInput, error) {
	var in productInput
	if wantsJSONBody(r) {
		err := json.NewDecoder(r.Body).Decode(&in)
		return in, err
	}
	if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.Name = r.Form.Get("name")
	in.Price = r.Form.Get("price")
	in.CategoryID = formUint(r, "category_id")
	in.ImageBase64 = r.Form.Get("image_base64")
	return in, nil
}

// validate parses the price and checks the category exists. Prices are parsed
// as decimals, not floats, so "19.90" stays 19.90 all the way to the column.
func (h *ProductHandler) validate(in productInput) (decimal.Decimal, validation.Violations) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	price := decimal.Zero
	if in.Price == "" {
		v["price"] = "required"
	} else if parsed, err := decimal.NewFromString(in.Price); err != nil {
		v["price"] = "invalid_decimal"
	} else {
		price = parsed
		validation.PositiveDecimal("price", price, v)
	}
	if in.CategoryID == 0 {
		v["category_id"] = "required"
	} else {
		var count int64
		h.DB.Model(&models.Category{}).Where("id = ?", in.CategoryID).Count(&count)
		if count == 0 {
			v["category_id"] = "unknown_category"
		}
	}
	return price, v
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.decode(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
		return
	}
	price, v := h.validate(in)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	product := models.Product{Name: in.Name, Price: price, CategoryID: in.CategoryID, ImageBase64: in.ImageBase64}
	if err := h.DB.Create(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_product", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Detail: GET /products/{id}
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var product models.Product
	if err := h.DB.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Update: PUT /products/{id}. The price change only affects future order
// lines; existing lines keep the price captured at order time.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	in, err := h.decode(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
		return
	}
	price, v := h.validate(in)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	product.Name = in.Name
	product.Price = price
	product.CategoryID = in.CategoryID
	product.ImageBase64 = in.ImageBase64
	if err := h.DB.Save(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete: DELETE /products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
		return
	}
	httpx.NoContent(w)
}
