package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type dashboardRepository interface {
	Totals(ctx context.Context, municipalityID string) (*models.DashboardTotals, error)
	ByDepartment(ctx context.Context, municipalityID string) ([]models.DashboardCount, error)
	ByStatus(ctx context.Context, municipalityID string) ([]models.DashboardCount, error)
	MonthlyTrend(ctx context.Context, municipalityID string) ([]models.DashboardTrendPoint, error)
	Recent(ctx context.Context, municipalityID string) ([]models.Complaint, error)
}

func dashboardCacheKey(municipalityID string) string {
	return fmt.Sprintf("dashboard:%s", municipalityID)
}

func dashboardCachePattern(municipalityID string) string {
	return dashboardCacheKey(municipalityID) + "*"
}

// DashboardService composes municipality overviews and caches them.
type DashboardService struct {
	repo           dashboardRepository
	municipalities municipalityFinder
	cache          *CacheService
	logger         *zap.Logger
	now            func() time.Time
	ttl            time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(repo dashboardRepository, municipalities municipalityFinder, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:           repo,
		municipalities: municipalities,
		cache:          cache,
		logger:         logger,
		now:            time.Now,
		ttl:            ttl,
	}
}

// Municipality returns the dashboard for a municipality and whether it came from cache.
func (s *DashboardService) Municipality(ctx context.Context, municipalityID string) (*dto.MunicipalityDashboard, bool, error) {
	if municipalityID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "municipality id is required")
	}
	key := dashboardCacheKey(municipalityID)
	var cached dto.MunicipalityDashboard
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	if _, err := s.municipalities.FindByID(ctx, municipalityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "municipality not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load municipality")
	}

	dashboard, err := s.compose(ctx, municipalityID)
	if err != nil {
		return nil, false, err
	}
	_ = s.cache.Set(ctx, key, dashboard, s.ttl)
	return dashboard, false, nil
}

func (s *DashboardService) compose(ctx context.Context, municipalityID string) (*dto.MunicipalityDashboard, error) {
	wrap := func(err error, what string) error {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard "+what)
	}
	totals, err := s.repo.Totals(ctx, municipalityID)
	if err != nil {
		return nil, wrap(err, "totals")
	}
	byDepartment, err := s.repo.ByDepartment(ctx, municipalityID)
	if err != nil {
		return nil, wrap(err, "department distribution")
	}
	byStatus, err := s.repo.ByStatus(ctx, municipalityID)
	if err != nil {
		return nil, wrap(err, "status distribution")
	}
	trend, err := s.repo.MonthlyTrend(ctx, municipalityID)
	if err != nil {
		return nil, wrap(err, "monthly trend")
	}
	recent, err := s.repo.Recent(ctx, municipalityID)
	if err != nil {
		return nil, wrap(err, "recent complaints")
	}

	return &dto.MunicipalityDashboard{
		MunicipalityID: municipalityID,
		Totals:         *totals,
		ByDepartment:   nonNil(byDepartment),
		ByStatus:       nonNil(byStatus),
		MonthlyTrend:   nonNil(trend),
		Recent:         nonNil(recent),
		GeneratedAt:    s.now().UTC(),
	}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
