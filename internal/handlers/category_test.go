package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/VictorEyeEagle/cadweb/internal/models"
)

func TestCategoryCreateJSONAndForm(t *testing.T) {
	db := setupTestDB(t)
	h := NewCategoryHandler(db)

	// JSON
	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"Bebidas","sort_order":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	// form
	form := url.Values{"name": {"Alimentos"}, "sort_order": {"2"}}
	req = httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Category{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 categories, got %d", count)
	}
}

func TestCategoryCreateRequiresName(t *testing.T) {
	db := setupTestDB(t)
	h := NewCategoryHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"sort_order":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestCategoryListOrderedBySortOrder(t *testing.T) {
	db := setupTestDB(t)
	for _, c := range []models.Category{
		{Name: "Outros", SortOrder: 99},
		{Name: "Bebidas", SortOrder: 1},
		{Name: "Limpeza", SortOrder: 3},
	} {
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	h := NewCategoryHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()
	h.List(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var resp struct {
		Items []models.Category `json:"items"`
		Total int64             `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || len(resp.Items) != 3 {
		t.Fatalf("expected 3 categories, got total=%d len=%d", resp.Total, len(resp.Items))
	}
	if resp.Items[0].Name != "Bebidas" || resp.Items[2].Name != "Outros" {
		t.Fatalf("wrong order: %v", resp.Items)
	}
}

func TestCategoryUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	cat := models.Category{Name: "Bebidas", SortOrder: 1}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewCategoryHandler(db)

	req := httptest.NewRequest(http.MethodPut, "/categories/1", strings.NewReader(`{"name":"Bebidas Geladas","sort_order":5}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var saved models.Category
	if err := db.First(&saved, cat.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if saved.Name != "Bebidas Geladas" || saved.SortOrder != 5 {
		t.Fatalf("update not persisted: %+v", saved)
	}

	req = httptest.NewRequest(http.MethodDelete, "/categories/1", nil)
	req.SetPathValue("id", "1")
	w = httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/categories/1", nil)
	req.SetPathValue("id", "1")
	w = httptest.NewRecorder()
	h.Detail(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}
