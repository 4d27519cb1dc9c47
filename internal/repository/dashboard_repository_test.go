package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardRepositoryAggregates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDashboardRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE status = 'Resolved') AS resolved")).
		WithArgs("muni-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "resolved", "active", "rejected", "avg_resolution_hours"}).
			AddRow(10, 4, 5, 1, 36.5))
	totals, err := repo.Totals(ctx, "muni-1")
	require.NoError(t, err)
	assert.Equal(t, 10, totals.Total)
	require.NotNil(t, totals.AverageResolutionHour)
	assert.InDelta(t, 36.5, *totals.AverageResolutionHour, 1e-9)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY department")).
		WithArgs("muni-1").
		WillReturnRows(sqlmock.NewRows([]string{"label", "count"}).AddRow("Roads", 6).AddRow("Water", 4))
	departments, err := repo.ByDepartment(ctx, "muni-1")
	require.NoError(t, err)
	assert.Len(t, departments, 2)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WithArgs("muni-1").
		WillReturnRows(sqlmock.NewRows([]string{"label", "count"}).AddRow("Pending", 5))
	statuses, err := repo.ByStatus(ctx, "muni-1")
	require.NoError(t, err)
	assert.Equal(t, "Pending", statuses[0].Label)

	month := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("date_trunc('month', created_at) AS month")).
		WithArgs("muni-1").
		WillReturnRows(sqlmock.NewRows([]string{"month", "count"}).AddRow(month, 3))
	trend, err := repo.MonthlyTrend(ctx, "muni-1")
	require.NoError(t, err)
	assert.Equal(t, month, trend[0].Month)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY c.created_at DESC, c.id LIMIT 5")).
		WithArgs("muni-1").
		WillReturnRows(complaintRow(sqlmock.NewRows(complaintRowColumns), "c-9", "Pending", 2))
	recent, err := repo.Recent(ctx, "muni-1")
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMunicipalityRepository(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMunicipalityRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM municipalities WHERE id = $1")).
		WithArgs("muni-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "district", "state", "latitude", "longitude", "verified"}).
			AddRow("muni-1", "Pune Municipal Corporation", "Pune", "Maharashtra", "18.52", "73.85", true))
	municipality, err := repo.FindByID(context.Background(), "muni-1")
	require.NoError(t, err)
	assert.True(t, municipality.Verified)
	require.NotNil(t, municipality.Latitude)

	mock.ExpectQuery(regexp.QuoteMeta("FROM municipality_officials WHERE user_id = $1")).
		WithArgs("official-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "municipality_id", "designation"}).
			AddRow("official-1", "muni-1", "Ward Officer"))
	assignment, err := repo.FindOfficialAssignment(context.Background(), "official-1")
	require.NoError(t, err)
	assert.Equal(t, "muni-1", assignment.MunicipalityID)
	require.NoError(t, mock.ExpectationsWereMet())
}
