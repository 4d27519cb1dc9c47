package dto

import (
	"time"

	"github.com/noah-isme/civic-triage-api/internal/models"
)

// MunicipalityDashboard is the aggregated overview served to municipality consoles.
type MunicipalityDashboard struct {
	MunicipalityID string                       `json:"municipality_id"`
	Totals         models.DashboardTotals       `json:"totals"`
	ByDepartment   []models.DashboardCount      `json:"by_department"`
	ByStatus       []models.DashboardCount      `json:"by_status"`
	MonthlyTrend   []models.DashboardTrendPoint `json:"monthly_trend"`
	Recent         []models.Complaint           `json:"recent"`
	GeneratedAt    time.Time                    `json:"generated_at"`
}
