package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/VictorEyeEagle/cadweb/internal/httpx"
	"github.com/VictorEyeEagle/cadweb/internal/models"
	"github.com/VictorEyeEagle/cadweb/internal/validation"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler { return &CategoryHandler{DB: db} }

// List: GET /categories – ordered by sort_order, optional q filter on name.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	dbq := h.DB.Model(&models.Category{})
	if like := searchLike(r); like != "" {
		dbq = dbq.Where("lower(name) LIKE ?", like)
	}
	var total int64
	dbq.Count(&total)
	var cats []models.Category
	if err := dbq.Order("sort_order asc, name asc").Limit(limit).Offset(offset).Find(&cats).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_categories", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": cats, "total": total, "limit": limit, "offset": offset})
}

type categoryInput struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (h *CategoryHandler) decode(r *http.Request) (categoryInput, error) {
	var in categoryInput
	if wantsJSONBody(r) {
		err := json.NewDecoder(r.Body).Decode(&in)
		return in, err
	}
	if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.Name = r.Form.Get("name")
	in.SortOrder = formInt(r, "sort_order")
	return in, nil
}

// Create: POST /categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.decode(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	cat := models.Category{Name: in.Name, SortOrder: in.SortOrder}
	if err := h.DB.Create(&cat).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_category", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, cat)
}

// Detail: GET /categories/{id}
func (h *CategoryHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "category_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_category", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, cat)
}

// Update: PUT /categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "category_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_category", nil)
		return
	}
	in, err := h.decode(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	cat.Name = in.Name
	cat.SortOrder = in.SortOrder
	if err := h.DB.Save(&cat).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_category", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, cat)
}

// Delete: DELETE /categories/{id} – products in the category go with it.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_category", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "category_not_found", nil)
		return
	}
	httpx.NoContent(w)
}
