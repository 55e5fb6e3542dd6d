package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/events"
	"marketplace-admin-backend/internal/metrics"
	"marketplace-admin-backend/internal/repository/memory"
	"marketplace-admin-backend/internal/service"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	clock := func() time.Time { return testNow }
	store := memory.NewStore()
	require.NoError(t, memory.Seed(ctx, store, testNow))

	m := metrics.New()
	publisher := events.NewLogPublisher()
	emailSvc := service.NewLogEmailService()
	writer := service.NewLedgerWriter(store.LedgerRepository, clock)
	disputes, err := service.NewDisputeService(store.DisputeRepository, store.Transactor, writer, publisher, emailSvc, m, clock)
	require.NoError(t, err)

	return NewRouter(Services{
		Disputes:  disputes,
		Ledger:    service.NewLedgerService(writer, store.LedgerRepository, publisher, m),
		Users:     service.NewUserService(store.UserRepository, publisher, emailSvc, m, clock),
		Listings:  service.NewListingService(store.ListingRepository, publisher, m, clock),
		Dashboard: service.NewDashboardService(store.DisputeRepository, store.UserRepository, store.ListingRepository, store.LedgerRepository, nil, time.Minute, clock),
	}, store, m)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, "usr_admin_jo")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestDisputeRoutes(t *testing.T) {
	h := newTestRouter(t)

	t.Run("List with filter", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/disputes?status=open&age=atLeast7days", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		page := decodeBody[service.DisputePage](t, rec)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "DSP-1003", page.Items[0].ID)
	})

	t.Run("Unknown filter value", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/disputes?status=closed", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Open", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/disputes", map[string]any{
			"order_id":  "ORD-9",
			"buyer_id":  "usr_buyer_tom",
			"seller_id": "usr_seller_kim",
			"amount":    "42.50",
			"currency":  "USD",
			"category":  "other",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		d := decodeBody[domain.Dispute](t, rec)
		assert.Equal(t, domain.DisputeStatusOpen, d.Status)
		assert.Equal(t, "42.5", d.Amount.String())
	})

	t.Run("Open validation", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/disputes", map[string]any{
			"buyer_id":  "usr_buyer_tom",
			"seller_id": "usr_buyer_tom",
			"amount":    "1",
			"currency":  "USD",
			"category":  "other",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody[ErrorResponse](t, rec)
		assert.Contains(t, body.Details, "order_id")
		assert.Contains(t, body.Details, "seller_id")
	})

	t.Run("Unknown currency", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/disputes", map[string]any{
			"order_id": "ORD-9", "buyer_id": "a", "seller_id": "b", "amount": "1", "currency": "XYZ", "category": "other",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Assign then resolve", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/disputes/DSP-1001/assign", map[string]any{"moderator_id": "usr_admin_jo"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.DisputeStatusReviewing, decodeBody[domain.Dispute](t, rec).Status)

		rec = do(t, h, http.MethodPost, "/api/v1/disputes/DSP-1001/resolve", map[string]any{"outcome": "refund"})
		require.Equal(t, http.StatusOK, rec.Code)
		out := decodeBody[resolveResponse](t, rec)
		assert.Equal(t, domain.DisputeStatusResolvedRefund, out.Dispute.Status)
		assert.Equal(t, "-299", out.LedgerEntry.Amount.String())
		res, _ := out.Dispute.Resolution.Get()
		assert.Equal(t, "usr_admin_jo", res.ResolvedBy.OrElse(""))

		rec = do(t, h, http.MethodPost, "/api/v1/disputes/DSP-1001/resolve", map[string]any{"outcome": "release"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Over-refund", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/disputes/DSP-1002/resolve", map[string]any{"outcome": "refund", "refund_amount": "151"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Messages and evidence", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/disputes/DSP-1003/messages", map[string]any{"author": "seller", "body": "I delivered on time"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[domain.Dispute](t, rec).Messages, 1)

		rec = do(t, h, http.MethodPost, "/api/v1/disputes/DSP-1003/evidence", map[string]any{"submitted_by": "seller", "note": "receipt", "url": "not a url"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(t, h, http.MethodPost, "/api/v1/disputes/DSP-1003/evidence", map[string]any{"submitted_by": "seller", "note": "receipt"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[domain.Dispute](t, rec).Evidence, 1)
	})

	t.Run("Unknown fields rejected", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/disputes/DSP-1003/messages", map[string]any{"author": "seller", "body": "x", "priority": "high"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Not found", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/disputes/DSP-0", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NotEmpty(t, decodeBody[ErrorResponse](t, rec).Error)
	})
}

func TestLedgerRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/ledger", map[string]any{"type": "fee", "amount": "-4.99", "currency": "USD", "order_id": "ORD-5001"})
	require.Equal(t, http.StatusCreated, rec.Code)
	entry := decodeBody[domain.LedgerEntry](t, rec)
	assert.NotEmpty(t, entry.ID)

	rec = do(t, h, http.MethodPost, "/api/v1/ledger", map[string]any{"type": "refund", "amount": "-1", "currency": "USD"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/ledger?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[service.LedgerPage](t, rec)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, entry.ID, page.Items[0].ID)

	rec = do(t, h, http.MethodGet, "/api/v1/ledger/orders/ORD-5001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.LedgerEntry](t, rec), 2)

	rec = do(t, h, http.MethodGet, "/api/v1/ledger?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModerationRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/users?status=suspended", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[[]domain.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, "usr_seller_raj", users[0].ID)

	rec = do(t, h, http.MethodPost, "/api/v1/users/usr_buyer_tom/suspend", map[string]any{"reason": "chargebacks"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.UserStatusSuspended, decodeBody[domain.User](t, rec).Status)

	rec = do(t, h, http.MethodPost, "/api/v1/users/usr_buyer_tom/suspend", map[string]any{"reason": "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/users/usr_buyer_tom/reactivate", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/listings/svc_api/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ListingStatusApproved, decodeBody[domain.ServiceListing](t, rec).Status)

	rec = do(t, h, http.MethodPost, "/api/v1/listings/svc_api/report", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/listings/svc_api/report", map[string]any{"reason": "spam"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/listings?status=reported", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.ServiceListing](t, rec), 2)
}

func TestDashboardRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/dashboard/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decodeBody[domain.DashboardMetrics](t, rec)
	assert.Equal(t, 2, m.DisputesByStatus[domain.DisputeStatusOpen])

	rec = do(t, h, http.MethodGet, "/api/v1/dashboard/report?from=2026-02-20T00:00:00Z&to=2026-03-03T00:00:00Z", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeBody[domain.AnalyticsReport](t, rec)
	assert.Equal(t, 3, report.DisputesOpened)

	rec = do(t, h, http.MethodGet, "/api/v1/dashboard/report?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_admin_http_requests_total")

	down := NewRouter(Services{}, downPinger{}, metrics.New())
	rec = do(t, down, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
