package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/VictorEyeEagle/cadweb/internal/httpx"
	"github.com/VictorEyeEagle/cadweb/internal/models"
	"github.com/VictorEyeEagle/cadweb/internal/validation"
)

type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

// List: GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	dbq := h.DB.Model(&models.Client{})
	if like := searchLike(r); like != "" {
		dbq = dbq.Where("lower(name) LIKE ? OR tax_id LIKE ?", like, like)
	}
	var total int64
	dbq.Count(&total)
	var clients []models.Client
	if err := dbq.Order("name asc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": limit, "offset": offset})
}

type clientInput struct {
	Name      string `json:"name"`
	TaxID     string `json:"tax_id"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
}

func (h *ClientHandler) decode(r *http.Request) (clientInput, error) {
	var in clientInput
	if wantsJSONBody(r) {
		err := json.NewDecoder(r.Body).Decode(&in)
		return in, err
	}
	if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.Name = r.Form.Get("name")
	in.TaxID = r.Form.Get("tax_id")
	in.BirthDate = r.Form.Get("birth_date")
	return in, nil
}

func (in clientInput) toModel(dst *models.Client, v validation.Violations) {
	validation.Required("name", in.Name, v)
	validation.Required("birth_date", in.BirthDate, v)
	var birth time.Time
	if in.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", in.BirthDate)
		if err != nil {
			v["birth_date"] = "invalid_date"
			return
		}
		birth = parsed
	}
	validation.PastDate("birth_date", birth, v)
	if !v.Empty() {
		return
	}
	dst.Name = in.Name
	dst.TaxID = in.TaxID
	dst.BirthDate = birth
}

// Create: POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.decode(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
		return
	}
	var client models.Client
	v := validation.Violations{}
	in.toModel(&client, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Create(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_client", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

// Detail: GET /clients/{id}
func (h *ClientHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	if err := h.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id": client.ID, "name": client.Name, "tax_id": client.TaxID,
		"birth_date": client.BirthDate, "birth_date_br": client.BirthDateBR(),
	})
}

// Update: PUT /clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	if err := h.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}
	in, err := h.decode(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
		return
	}
	v := validation.Violations{}
	in.toModel(&client, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Save(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Delete: DELETE /clients/{id} – the client's orders cascade away.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Delete(&models.Client{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_client", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
		return
	}
	httpx.NoContent(w)
}
