package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-triage-api/internal/classifier"
	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/geo"
	"github.com/noah-isme/civic-triage-api/internal/models"
	"github.com/noah-isme/civic-triage-api/internal/textmatch"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

// DuplicateRadiusKM bounds how far an existing complaint may be from a new one
// to count as a duplicate candidate.
const DuplicateRadiusKM = 1.0

type duplicateClassifier interface {
	Available() bool
	Duplicates(ctx context.Context, description string, candidates []classifier.Candidate) []string
}

// DuplicateService finds open complaints likely describing the same problem.
type DuplicateService struct {
	complaints openComplaintLister
	classifier duplicateClassifier
	logger     *zap.Logger
}

// NewDuplicateService constructs the detector.
func NewDuplicateService(complaints openComplaintLister, classifier duplicateClassifier, logger *zap.Logger) *DuplicateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuplicateService{complaints: complaints, classifier: classifier, logger: logger}
}

// FindSimilar returns nearby open complaints of the same municipality that the
// classifier, or failing that the fuzzy matcher, flags as duplicates.
func (s *DuplicateService) FindSimilar(ctx context.Context, query dto.SimilarQuery) ([]dto.SimilarComplaint, error) {
	municipalityID := strings.TrimSpace(query.MunicipalityID)
	if query.Latitude == nil || query.Longitude == nil || municipalityID == "" {
		return nil, appErrors.ErrMissingLocation
	}
	origin := geo.Point{Lat: *query.Latitude, Lng: *query.Longitude}
	if !origin.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "latitude or longitude out of range")
	}

	open, err := s.complaints.ListOpen(ctx, municipalityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load duplicate candidates")
	}
	candidates := geo.WithinRadius(origin, DuplicateRadiusKM, open, complaintPoint)
	if len(candidates) == 0 {
		return []dto.SimilarComplaint{}, nil
	}

	if matches := s.classifierMatches(ctx, query.Description, candidates); len(matches) > 0 {
		return matches, nil
	}
	return fuzzyMatches(query.Description, candidates), nil
}

func (s *DuplicateService) classifierMatches(ctx context.Context, description string, candidates []geo.Match[models.Complaint]) []dto.SimilarComplaint {
	if s.classifier == nil || !s.classifier.Available() || strings.TrimSpace(description) == "" {
		return nil
	}
	presented := candidates
	if len(presented) > classifier.MaxDuplicateCandidates {
		presented = presented[:classifier.MaxDuplicateCandidates]
	}
	offered := make([]classifier.Candidate, len(presented))
	for i, match := range presented {
		offered[i] = classifier.Candidate{ID: match.Item.ID, Topic: match.Item.Topic, Description: match.Item.Description}
	}

	ids := s.classifier.Duplicates(ctx, description, offered)
	if len(ids) == 0 {
		return nil
	}
	flagged := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		flagged[id] = struct{}{}
	}
	results := make([]dto.SimilarComplaint, 0, len(ids))
	for _, match := range presented {
		if _, ok := flagged[match.Item.ID]; !ok {
			continue
		}
		results = append(results, dto.SimilarComplaint{
			Complaint:  match.Item,
			DistanceKM: match.DistanceKM,
			MatchedBy:  dto.MatchedByClassifier,
		})
	}
	s.logger.Debug("classifier flagged duplicates", zap.Int("candidates", len(presented)), zap.Int("flagged", len(results)))
	return results
}

func fuzzyMatches(description string, candidates []geo.Match[models.Complaint]) []dto.SimilarComplaint {
	results := []dto.SimilarComplaint{}
	for _, match := range candidates {
		ratio := textmatch.Ratio(description, match.Item.Description)
		if ratio <= textmatch.SimilarityThreshold {
			continue
		}
		similarity := ratio
		results = append(results, dto.SimilarComplaint{
			Complaint:  match.Item,
			DistanceKM: match.DistanceKM,
			MatchedBy:  dto.MatchedByFuzzy,
			Similarity: &similarity,
		})
	}
	return results
}

func complaintPoint(c models.Complaint) geo.Point {
	lat, _ := c.Latitude.Float64()
	lng, _ := c.Longitude.Float64()
	return geo.Point{Lat: lat, Lng: lng}
}
