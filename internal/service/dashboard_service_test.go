package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type stubDashboardRepo struct {
	calls     int
	totalsErr error
}

func (s *stubDashboardRepo) Totals(context.Context, string) (*models.DashboardTotals, error) {
	s.calls++
	if s.totalsErr != nil {
		return nil, s.totalsErr
	}
	avg := 36.5
	return &models.DashboardTotals{Total: 12, Resolved: 5, Active: 6, Rejected: 1, AverageResolutionHour: &avg}, nil
}

func (s *stubDashboardRepo) ByDepartment(context.Context, string) ([]models.DashboardCount, error) {
	return []models.DashboardCount{{Label: string(models.DepartmentRoads), Count: 7}, {Label: string(models.DepartmentWater), Count: 5}}, nil
}

func (s *stubDashboardRepo) ByStatus(context.Context, string) ([]models.DashboardCount, error) {
	return []models.DashboardCount{{Label: string(models.ComplaintStatusPending), Count: 4}}, nil
}

func (s *stubDashboardRepo) MonthlyTrend(context.Context, string) ([]models.DashboardTrendPoint, error) {
	return nil, nil
}

func (s *stubDashboardRepo) Recent(context.Context, string) ([]models.Complaint, error) {
	return []models.Complaint{complaintFixture("c-1", "muni-1", models.ComplaintStatusPending, "0.75", 3, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))}, nil
}

func TestDashboardServiceComposesAndCaches(t *testing.T) {
	repo := &stubDashboardRepo{}
	cacheRepo := &stubCacheRepo{}
	svc := NewDashboardService(repo, municipalities("muni-1"), NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true), time.Minute, nil)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	first, hit, err := svc.Municipality(context.Background(), "muni-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 12, first.Totals.Total)
	assert.Equal(t, 36.5, *first.Totals.AverageResolutionHour)
	assert.NotNil(t, first.MonthlyTrend)
	assert.Equal(t, now, first.GeneratedAt)
	assert.Contains(t, cacheRepo.store, "dashboard:muni-1")

	second, hit, err := svc.Municipality(context.Background(), "muni-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, "0.75", second.Recent[0].Priority.String())
	assert.Equal(t, first.ByDepartment, second.ByDepartment)
}

func TestDashboardServiceWithoutCache(t *testing.T) {
	repo := &stubDashboardRepo{}
	svc := NewDashboardService(repo, municipalities("muni-1"), nil, 0, nil)

	_, hit, err := svc.Municipality(context.Background(), "muni-1")
	require.NoError(t, err)
	assert.False(t, hit)
	_, _, err = svc.Municipality(context.Background(), "muni-1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestDashboardServiceErrors(t *testing.T) {
	svc := NewDashboardService(&stubDashboardRepo{}, municipalities("muni-1"), nil, 0, nil)
	_, _, err := svc.Municipality(context.Background(), "muni-404")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	svc = NewDashboardService(&stubDashboardRepo{totalsErr: errors.New("timeout")}, municipalities("muni-1"), nil, 0, nil)
	_, _, err = svc.Municipality(context.Background(), "muni-1")
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
