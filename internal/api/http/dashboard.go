package http

import (
	"fmt"
	"net/http"
	"time"

	"marketplace-admin-backend/internal/domain"
)

const defaultReportWindow = 30 * 24 * time.Hour

func (h *handler) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Dashboard.Metrics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// dashboardReport takes RFC 3339 from/to; to defaults to now and from to 30 days before to.
func (h *handler) dashboardReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	to := h.now()
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: to must be an RFC 3339 timestamp", domain.ErrInvalidArgument))
			return
		}
		to = t
	}
	from := to.Add(-defaultReportWindow)
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: from must be an RFC 3339 timestamp", domain.ErrInvalidArgument))
			return
		}
		from = t
	}

	report, err := h.svc.Dashboard.Report(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
