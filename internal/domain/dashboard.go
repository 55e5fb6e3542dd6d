package domain

import "time"

// DashboardMetrics is the headline view of the admin dashboard.
type DashboardMetrics struct {
	GeneratedAt       time.Time             `json:"generated_at"`
	DisputesByStatus  map[DisputeStatus]int `json:"disputes_by_status"`
	OpenDisputesByAge map[AgeBucket]int     `json:"open_disputes_by_age"`
	UsersByStatus     map[UserStatus]int    `json:"users_by_status"`
	ListingsByStatus  map[ListingStatus]int `json:"listings_by_status"`
	LedgerLast30Days  []LedgerTotal         `json:"ledger_last_30_days"`
}

// AnalyticsReport summarises dispute and ledger activity over a period.
type AnalyticsReport struct {
	From                time.Time               `json:"from"`
	To                  time.Time               `json:"to"`
	DisputesOpened      int                     `json:"disputes_opened"`
	DisputesResolved    int                     `json:"disputes_resolved"`
	RefundOutcomes      int                     `json:"refund_outcomes"`
	ReleaseOutcomes     int                     `json:"release_outcomes"`
	MeanResolutionHours float64                 `json:"mean_resolution_hours"`
	DisputesByCategory  map[DisputeCategory]int `json:"disputes_by_category"`
	LedgerTotals        []LedgerTotal           `json:"ledger_totals"`
}
