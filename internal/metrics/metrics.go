// Package metrics exposes Prometheus instruments for the admin backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketplace_admin"

type Metrics struct {
	registry *prometheus.Registry

	DisputesOpenedTotal    *prometheus.CounterVec
	DisputesAssignedTotal  prometheus.Counter
	DisputesResolvedTotal  *prometheus.CounterVec
	RefundedAmountTotal    *prometheus.CounterVec
	ResolutionHours        *prometheus.HistogramVec
	StaleDisputes          prometheus.Gauge
	LedgerEntriesTotal     *prometheus.CounterVec
	ModerationActionsTotal *prometheus.CounterVec
	ConflictsTotal         prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers every instrument on a private registry, so tests and
// multiple servers in one process do not collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		DisputesOpenedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disputes_opened_total",
			Help:      "Disputes opened, by category.",
		}, []string{"category"}),

		DisputesAssignedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disputes_assigned_total",
			Help:      "Assignments that changed a dispute's moderator or status.",
		}),

		DisputesResolvedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disputes_resolved_total",
			Help:      "Disputes resolved, by outcome and currency.",
		}, []string{"outcome", "currency"}),

		RefundedAmountTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunded_amount_total",
			Help:      "Amount refunded to buyers through dispute resolution.",
		}, []string{"currency"}),

		ResolutionHours: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispute_resolution_hours",
			Help:      "Hours from opening to resolution.",
			Buckets:   []float64{1, 6, 24, 72, 168, 336, 720},
		}, []string{"outcome"}),

		StaleDisputes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stale_disputes",
			Help:      "Unresolved disputes older than the stale threshold at the last check.",
		}),

		LedgerEntriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_total",
			Help:      "Ledger entries recorded, by type and currency.",
		}, []string{"type", "currency"}),

		ModerationActionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_actions_total",
			Help:      "User and listing moderation actions.",
		}, []string{"action"}),

		ConflictsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispute_save_conflicts_total",
			Help:      "Dispute saves rejected because of a concurrent modification.",
		}),

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route template, method and status code.",
		}, []string{"route", "method", "code"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
