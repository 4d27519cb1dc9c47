package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-triage-api/internal/models"
)

const dashboardRecentLimit = 5

// DashboardRepository computes municipality dashboard aggregates.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Totals returns headline counters and the mean resolution time in hours.
func (r *DashboardRepository) Totals(ctx context.Context, municipalityID string) (*models.DashboardTotals, error) {
	const query = `SELECT
	COUNT(*) AS total,
	COUNT(*) FILTER (WHERE status = 'Resolved') AS resolved,
	COUNT(*) FILTER (WHERE status IN ('Pending', 'In Progress')) AS active,
	COUNT(*) FILTER (WHERE status = 'Rejected') AS rejected,
	AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600.0) FILTER (WHERE status = 'Resolved') AS avg_resolution_hours
FROM complaints WHERE municipality_id = $1`
	var totals models.DashboardTotals
	if err := r.db.GetContext(ctx, &totals, query, municipalityID); err != nil {
		return nil, fmt.Errorf("dashboard totals: %w", err)
	}
	return &totals, nil
}

// ByDepartment counts complaints per department.
func (r *DashboardRepository) ByDepartment(ctx context.Context, municipalityID string) ([]models.DashboardCount, error) {
	const query = `SELECT department AS label, COUNT(*) AS count FROM complaints
	WHERE municipality_id = $1 GROUP BY department ORDER BY count DESC, label`
	var counts []models.DashboardCount
	if err := r.db.SelectContext(ctx, &counts, query, municipalityID); err != nil {
		return nil, fmt.Errorf("dashboard departments: %w", err)
	}
	return counts, nil
}

// ByStatus counts complaints per status.
func (r *DashboardRepository) ByStatus(ctx context.Context, municipalityID string) ([]models.DashboardCount, error) {
	const query = `SELECT status AS label, COUNT(*) AS count FROM complaints
	WHERE municipality_id = $1 GROUP BY status ORDER BY count DESC, label`
	var counts []models.DashboardCount
	if err := r.db.SelectContext(ctx, &counts, query, municipalityID); err != nil {
		return nil, fmt.Errorf("dashboard statuses: %w", err)
	}
	return counts, nil
}

// MonthlyTrend counts complaints filed per month over the last twelve months.
func (r *DashboardRepository) MonthlyTrend(ctx context.Context, municipalityID string) ([]models.DashboardTrendPoint, error) {
	const query = `SELECT date_trunc('month', created_at) AS month, COUNT(*) AS count FROM complaints
	WHERE municipality_id = $1 AND created_at >= date_trunc('month', NOW()) - INTERVAL '11 months'
	GROUP BY month ORDER BY month`
	var points []models.DashboardTrendPoint
	if err := r.db.SelectContext(ctx, &points, query, municipalityID); err != nil {
		return nil, fmt.Errorf("dashboard trend: %w", err)
	}
	return points, nil
}

// Recent returns the most recently filed complaints.
func (r *DashboardRepository) Recent(ctx context.Context, municipalityID string) ([]models.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints c WHERE c.municipality_id = $1 ORDER BY c.created_at DESC, c.id LIMIT %d`,
		complaintColumns, dashboardRecentLimit)
	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, query, municipalityID); err != nil {
		return nil, fmt.Errorf("dashboard recent: %w", err)
	}
	return complaints, nil
}
