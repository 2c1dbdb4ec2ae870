package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/VictorEyeEagle/cadweb/internal/models"
	"github.com/VictorEyeEagle/cadweb/internal/services"
)

type valuationResp struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	ItemCount  int             `json:"item_count"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	BalanceDue decimal.Decimal `json:"balance_due"`
	ICMS       decimal.Decimal `json:"icms"`
	TotalTaxes decimal.Decimal `json:"total_taxes"`
	FinalValue decimal.Decimal `json:"final_value"`
	DateKey    string          `json:"date_key"`
	AccessKey  string          `json:"access_key"`
}

type detailResp struct {
	Order     models.Order  `json:"order"`
	Valuation valuationResp `json:"valuation"`
}

func createOrder(t *testing.T, h *OrderHandler, body string) uint {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return created.ID
}

func getDetail(t *testing.T, h *OrderHandler, id uint) detailResp {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/orders/"+strconv.Itoa(int(id)), nil)
	req.SetPathValue("id", strconv.Itoa(int(id)))
	w := httptest.NewRecorder()
	h.Detail(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("detail: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp detailResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestOrderCreateAndValuation(t *testing.T) {
	db := setupTestDB(t)
	_, client, product := seedFixtures(t, db)
	extra := models.Product{Name: "Filtro de papel", Price: mustDec(t, "5.00"), CategoryID: product.CategoryID}
	if err := db.Create(&extra).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewOrderHandler(db, services.NewValuationService())

	body := `{"client_id":` + strconv.Itoa(int(client.ID)) + `,"items":[` +
		`{"product_id":` + strconv.Itoa(int(product.ID)) + `,"quantity":3},` +
		`{"product_id":` + strconv.Itoa(int(extra.ID)) + `,"quantity":1}]}`
	id := createOrder(t, h, body)

	resp := getDetail(t, h, id)
	if !resp.Valuation.Subtotal.Equal(mustDec(t, "35.00")) {
		t.Fatalf("subtotal: want 35.00 got %s", resp.Valuation.Subtotal)
	}
	if resp.Valuation.ItemCount != 2 {
		t.Fatalf("item_count: want 2 got %d", resp.Valuation.ItemCount)
	}
	if resp.Order.Status != models.StatusNew {
		t.Fatalf("new order should have status Novo, got %v", resp.Order.Status)
	}
	if resp.Valuation.DateKey == "" || resp.Valuation.AccessKey == "" {
		t.Fatalf("persisted order must have date and access keys: %+v", resp.Valuation)
	}
	for _, c := range resp.Valuation.AccessKey {
		if c < '0' || c > '9' {
			t.Fatalf("access key has non-digit %q", c)
		}
	}
}

func TestOrderItemPriceIsSnapshot(t *testing.T) {
	db := setupTestDB(t)
	_, client, product := seedFixtures(t, db)
	h := NewOrderHandler(db, services.NewValuationService())

	body := `{"client_id":` + strconv.Itoa(int(client.ID)) + `,"items":[{"product_id":` + strconv.Itoa(int(product.ID)) + `,"quantity":2}]}`
	id := createOrder(t, h, body)

	// raise the product price after the order was placed
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", mustDec(t, "99.99")).Error; err != nil {
		t.Fatalf("update price: %v", err)
	}

	resp := getDetail(t, h, id)
	if !resp.Valuation.Subtotal.Equal(mustDec(t, "20.00")) {
		t.Fatalf("historical subtotal must use captured price: want 20.00 got %s", resp.Valuation.Subtotal)
	}
}

func TestOrderCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	_, client, _ := seedFixtures(t, db)
	h := NewOrderHandler(db, services.NewValuationService())
	cid := strconv.Itoa(int(client.ID))

	cases := []struct {
		name string
		body string
	}{
		{"no client", `{"items":[{"product_id":1,"quantity":1}]}`},
		{"no items", `{"client_id":` + cid + `,"items":[]}`},
		{"zero quantity", `{"client_id":` + cid + `,"items":[{"product_id":1,"quantity":0}]}`},
		{"negative quantity", `{"client_id":` + cid + `,"items":[{"product_id":1,"quantity":-2}]}`},
		{"unknown product", `{"client_id":` + cid + `,"items":[{"product_id":99,"quantity":1}]}`},
		{"negative price override", `{"client_id":` + cid + `,"items":[{"product_id":1,"quantity":1,"price":"-3.00"}]}`},
		{"unparseable price override", `{"client_id":` + cid + `,"items":[{"product_id":1,"quantity":1,"price":"abc"}]}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.Create(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400 got %d body=%s", tc.name, w.Code, w.Body.String())
		}
	}
}

func TestOrderStatusFreelySettable(t *testing.T) {
	db := setupTestDB(t)
	_, client, product := seedFixtures(t, db)
	h := NewOrderHandler(db, services.NewValuationService())
	id := createOrder(t, h, `{"client_id":`+strconv.Itoa(int(client.ID))+`,"items":[{"product_id":`+strconv.Itoa(int(product.ID))+`,"quantity":1}]}`)
	sid := strconv.Itoa(int(id))

	var before models.Order
	if err := db.First(&before, id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}

	// jump straight from Novo to Concluído: no transition graph is enforced
	req := httptest.NewRequest(http.MethodPut, "/orders/"+sid, strings.NewReader(`{"status":3}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", sid)
	w := httptest.NewRecorder()
	h.UpdateStatus(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var after models.Order
	if err := db.First(&after, id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Status != models.StatusCompleted {
		t.Fatalf("status not updated: %v", after.Status)
	}
	if !after.OrderedAt.Equal(before.OrderedAt) {
		t.Fatalf("OrderedAt must be immutable: %v != %v", after.OrderedAt, before.OrderedAt)
	}

	// unknown status is rejected
	req = httptest.NewRequest(http.MethodPut, "/orders/"+sid, strings.NewReader(`{"status":9}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", sid)
	w = httptest.NewRecorder()
	h.UpdateStatus(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", w.Code)
	}
}

func TestOrderAllowsRepeatedProductLines(t *testing.T) {
	db := setupTestDB(t)
	_, client, product := seedFixtures(t, db)
	h := NewOrderHandler(db, services.NewValuationService())
	pid := strconv.Itoa(int(product.ID))

	// same product twice: one line at the snapshot price, one at an override
	body := `{"client_id":` + strconv.Itoa(int(client.ID)) + `,"items":[` +
		`{"product_id":` + pid + `,"quantity":1},` +
		`{"product_id":` + pid + `,"quantity":2,"price":"8.00"}]}`
	id := createOrder(t, h, body)

	resp := getDetail(t, h, id)
	if resp.Valuation.ItemCount != 2 {
		t.Fatalf("item_count: want 2 got %d", resp.Valuation.ItemCount)
	}
	// 1×10.00 + 2×8.00
	if !resp.Valuation.Subtotal.Equal(mustDec(t, "26.00")) {
		t.Fatalf("subtotal: want 26.00 got %s", resp.Valuation.Subtotal)
	}
}

func TestOrderDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	_, client, product := seedFixtures(t, db)
	h := NewOrderHandler(db, services.NewValuationService())
	id := createOrder(t, h, `{"client_id":`+strconv.Itoa(int(client.ID))+`,"items":[{"product_id":`+strconv.Itoa(int(product.ID))+`,"quantity":1}]}`)

	if err := db.Create(&models.Payment{OrderID: id, Method: models.MethodPix, Amount: mustDec(t, "5.00")}).Error; err != nil {
		t.Fatalf("payment: %v", err)
	}

	sid := strconv.Itoa(int(id))
	req := httptest.NewRequest(http.MethodDelete, "/orders/"+sid, nil)
	req.SetPathValue("id", sid)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d body=%s", w.Code, w.Body.String())
	}

	var items, payments int64
	db.Model(&models.OrderItem{}).Where("order_id = ?", id).Count(&items)
	db.Model(&models.Payment{}).Where("order_id = ?", id).Count(&payments)
	if items != 0 || payments != 0 {
		t.Fatalf("dependents not removed: items=%d payments=%d", items, payments)
	}
}
