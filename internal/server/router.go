package server

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/VictorEyeEagle/cadweb/internal/handlers"
	"github.com/VictorEyeEagle/cadweb/internal/httpx"
	"github.com/VictorEyeEagle/cadweb/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check; detailed errors stay out of the body.
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ch := handlers.NewCategoryHandler(db)
	mux.HandleFunc("GET /categories", ch.List)
	mux.HandleFunc("POST /categories", ch.Create)
	mux.HandleFunc("GET /categories/{id}", ch.Detail)
	mux.HandleFunc("PUT /categories/{id}", ch.Update)
	mux.HandleFunc("DELETE /categories/{id}", ch.Delete)

	clh := handlers.NewClientHandler(db)
	mux.HandleFunc("GET /clients", clh.List)
	mux.HandleFunc("POST /clients", clh.Create)
	mux.HandleFunc("GET /clients/{id}", clh.Detail)
	mux.HandleFunc("PUT /clients/{id}", clh.Update)
	mux.HandleFunc("DELETE /clients/{id}", clh.Delete)

	ph := handlers.NewProductHandler(db)
	mux.HandleFunc("GET /products", ph.List)
	mux.HandleFunc("POST /products", ph.Create)
	mux.HandleFunc("GET /products/{id}", ph.Detail)
	mux.HandleFunc("PUT /products/{id}", ph.Update)
	mux.HandleFunc("DELETE /products/{id}", ph.Delete)

	sh := handlers.NewStockHandler(db, services.NewStockService(db))
	mux.HandleFunc("GET /products/{id}/stock", sh.Get)
	mux.HandleFunc("POST /products/{id}/stock", sh.Adjust)

	valuation := services.NewValuationService()
	oh := handlers.NewOrderHandler(db, valuation)
	mux.HandleFunc("GET /orders", oh.List)
	mux.HandleFunc("POST /orders", oh.Create)
	mux.HandleFunc("GET /orders/{id}", oh.Detail)
	mux.HandleFunc("PUT /orders/{id}", oh.UpdateStatus)
	mux.HandleFunc("DELETE /orders/{id}", oh.Delete)

	pay := handlers.NewPaymentHandler(db, valuation)
	mux.HandleFunc("GET /orders/{id}/payments", pay.List)
	mux.HandleFunc("POST /orders/{id}/payments", pay.Create)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("cadweb API"))
	})

	return withRequestID(withRecover(withLogging(mux)))
}
