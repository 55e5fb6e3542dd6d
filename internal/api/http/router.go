// Package http serves the admin dashboard REST API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"marketplace-admin-backend/internal/metrics"
	"marketplace-admin-backend/internal/repository"
	"marketplace-admin-backend/internal/service"
)

// Services groups the admin services the API exposes.
type Services struct {
	Disputes  service.DisputeService
	Ledger    service.LedgerService
	Users     service.UserService
	Listings  service.ListingService
	Dashboard service.DashboardService
}

type handler struct {
	svc       Services
	pinger    repository.Pinger
	validator *requestValidator
	now       func() time.Time
}

// NewRouter registers every route under /api/v1 plus /health and /metrics.
func NewRouter(svc Services, pinger repository.Pinger, m *metrics.Metrics) *mux.Router {
	h := &handler{
		svc:       svc,
		pinger:    pinger,
		validator: newRequestValidator(),
		now:       func() time.Time { return time.Now().UTC() },
	}

	router := mux.NewRouter()
	router.Use(instrument(m))
	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/disputes", h.listDisputes).Methods(http.MethodGet)
	api.HandleFunc("/disputes", h.openDispute).Methods(http.MethodPost)
	api.HandleFunc("/disputes/{id}", h.getDispute).Methods(http.MethodGet)
	api.HandleFunc("/disputes/{id}/assign", h.assignDispute).Methods(http.MethodPost)
	api.HandleFunc("/disputes/{id}/resolve", h.resolveDispute).Methods(http.MethodPost)
	api.HandleFunc("/disputes/{id}/messages", h.addMessage).Methods(http.MethodPost)
	api.HandleFunc("/disputes/{id}/evidence", h.addEvidence).Methods(http.MethodPost)

	api.HandleFunc("/ledger", h.listLedger).Methods(http.MethodGet)
	api.HandleFunc("/ledger", h.recordLedgerEntry).Methods(http.MethodPost)
	api.HandleFunc("/ledger/orders/{orderId}", h.listLedgerByOrder).Methods(http.MethodGet)

	api.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.getUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/suspend", h.suspendUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/reactivate", h.reactivateUser).Methods(http.MethodPost)

	api.HandleFunc("/listings", h.listListings).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id}", h.getListing).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id}/approve", h.approveListing).Methods(http.MethodPost)
	api.HandleFunc("/listings/{id}/unlist", h.unlistListing).Methods(http.MethodPost)
	api.HandleFunc("/listings/{id}/report", h.reportListing).Methods(http.MethodPost)

	api.HandleFunc("/dashboard/metrics", h.dashboardMetrics).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/report", h.dashboardReport).Methods(http.MethodGet)

	return router
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
