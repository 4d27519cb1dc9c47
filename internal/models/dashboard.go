package models

import "time"

// DashboardCount is a labelled counter used by distribution queries.
type DashboardCount struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// DashboardTotals aggregates headline complaint counters.
type DashboardTotals struct {
	Total                 int      `db:"total" json:"total"`
	Resolved              int      `db:"resolved" json:"resolved"`
	Active                int      `db:"active" json:"active"`
	Rejected              int      `db:"rejected" json:"rejected"`
	AverageResolutionHour *float64 `db:"avg_resolution_hours" json:"average_resolution_hours,omitempty"`
}

// DashboardTrendPoint counts complaints filed in a calendar month.
type DashboardTrendPoint struct {
	Month time.Time `db:"month" json:"month"`
	Count int       `db:"count" json:"count"`
}
