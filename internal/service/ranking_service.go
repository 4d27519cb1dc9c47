package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type openComplaintLister interface {
	ListOpen(ctx context.Context, municipalityID string) ([]models.Complaint, error)
}

// RankingService orders open complaints by their live score.
type RankingService struct {
	repo   openComplaintLister
	logger *zap.Logger
	now    func() time.Time
}

// NewRankingService constructs the ranking service.
func NewRankingService(repo openComplaintLister, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{repo: repo, logger: logger, now: time.Now}
}

// Rank returns the requested page of open complaints ordered by score.
// Scores are recomputed on every call so that age decay is always current.
func (s *RankingService) Rank(ctx context.Context, municipalityID *string, page int) (*dto.RankedPage, error) {
	if page < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "page must be a positive integer")
	}
	scope := ""
	if municipalityID != nil {
		scope = *municipalityID
	}
	complaints, err := s.repo.ListOpen(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaints for ranking")
	}

	now := s.now()
	ranked := make([]dto.RankedComplaint, len(complaints))
	for i, complaint := range complaints {
		ranked[i] = dto.RankedComplaint{Complaint: complaint, Score: ScoreComplaint(complaint, now)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return rankedBefore(ranked[i], ranked[j])
	})

	items := []dto.RankedComplaint{}
	pages := (len(ranked) + dto.RankingPageSize - 1) / dto.RankingPageSize
	if page-1 < pages {
		start := (page - 1) * dto.RankingPageSize
		end := start + dto.RankingPageSize
		if end > len(ranked) {
			end = len(ranked)
		}
		items = ranked[start:end]
	}
	s.logger.Debug("ranked complaints", zap.Int("eligible", len(ranked)), zap.Int("page", page), zap.Int("count", len(items)))

	return &dto.RankedPage{Page: page, Total: len(ranked), Count: len(items), Items: items}, nil
}

// rankedBefore orders by score descending, then newest first, then id.
func rankedBefore(a, b dto.RankedComplaint) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Complaint.CreatedAt.Equal(b.Complaint.CreatedAt) {
		return a.Complaint.CreatedAt.After(b.Complaint.CreatedAt)
	}
	return a.Complaint.ID < b.Complaint.ID
}
