package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-triage-api/internal/classifier"
	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

// LowUrgencyThreshold is the priority below which a submission is rejected.
const LowUrgencyThreshold = 0.2

const (
	decisionAccepted           = "accepted"
	decisionTrustTooLow        = "trust_too_low"
	decisionRejectedLowUrgency = "rejected_low_urgency"
)

type complaintCreator interface {
	Create(ctx context.Context, complaint *models.Complaint) error
}

type honestyScoreRepository interface {
	EnsureHonestyScore(ctx context.Context, userID string) (int, error)
	DecrementHonestyScore(ctx context.Context, userID string, penalty int) (int, error)
}

type municipalityFinder interface {
	FindByID(ctx context.Context, id string) (*models.Municipality, error)
}

type urgencyClassifier interface {
	Urgency(ctx context.Context, description string) classifier.UrgencyResult
}

// ModerationServiceParams groups constructor dependencies.
type ModerationServiceParams struct {
	Complaints     complaintCreator
	Profiles       honestyScoreRepository
	Municipalities municipalityFinder
	Classifier     urgencyClassifier
	Cache          *CacheService
	Metrics        *MetricsService
	Validator      *validator.Validate
	Logger         *zap.Logger
}

// ModerationService gates complaint submissions on submitter trust and urgency.
type ModerationService struct {
	complaints     complaintCreator
	profiles       honestyScoreRepository
	municipalities municipalityFinder
	classifier     urgencyClassifier
	cache          *CacheService
	metrics        *MetricsService
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewModerationService constructs the moderation gate.
func NewModerationService(params ModerationServiceParams) *ModerationService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{
		complaints:     params.Complaints,
		profiles:       params.Profiles,
		municipalities: params.Municipalities,
		classifier:     params.Classifier,
		cache:          params.Cache,
		metrics:        params.Metrics,
		validator:      validate,
		logger:         logger,
	}
}

// Submit runs a new complaint through the moderation gate.
//
// Submitters whose honesty score is below models.MinimumHonestyScore are
// rejected before the classifier is consulted. Complaints classified below
// LowUrgencyThreshold are not stored and cost the submitter
// models.LowUrgencyPenalty points. Everything else is stored as Pending.
func (s *ModerationService) Submit(ctx context.Context, req dto.SubmitComplaintRequest, actor *models.JWTClaims) (*models.Complaint, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	req.Topic = strings.TrimSpace(req.Topic)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}
	if !req.Department.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}
	if req.MunicipalityID != nil {
		if strings.TrimSpace(*req.MunicipalityID) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "municipality_id must not be blank")
		}
		if _, err := s.municipalities.FindByID(ctx, *req.MunicipalityID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "municipality not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load municipality")
		}
	}

	score, err := s.profiles.EnsureHonestyScore(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load honesty score")
	}
	if score < models.MinimumHonestyScore {
		s.metrics.RecordModerationDecision(decisionTrustTooLow)
		s.logger.Info("submission blocked by honesty score", zap.String("user_id", actor.UserID), zap.Int("honesty_score", score))
		return nil, appErrors.WithDetails(appErrors.ErrTrustTooLow, map[string]interface{}{
			"honesty_score": score,
			"minimum":       models.MinimumHonestyScore,
		})
	}

	priority := classifier.DefaultPriority
	if req.Description != "" {
		result := s.classifier.Urgency(ctx, req.Description)
		priority = math.Min(math.Max(result.Priority, 0), 1)
		if result.Fallback {
			s.logger.Info("urgency classifier unavailable, using default priority", zap.String("user_id", actor.UserID))
		}
	}

	if priority < LowUrgencyThreshold {
		remaining, err := s.profiles.DecrementHonestyScore(ctx, actor.UserID, models.LowUrgencyPenalty)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply honesty penalty")
		}
		s.metrics.RecordModerationDecision(decisionRejectedLowUrgency)
		s.logger.Info("submission rejected as low urgency",
			zap.String("user_id", actor.UserID),
			zap.Float64("priority", priority),
			zap.Int("honesty_score", remaining),
		)
		return nil, appErrors.WithDetails(appErrors.ErrRejectedLowUrgency, map[string]interface{}{
			"priority":      priority,
			"honesty_score": remaining,
		})
	}

	complaint := &models.Complaint{
		UserID:         actor.UserID,
		MunicipalityID: req.MunicipalityID,
		Department:     req.Department,
		Topic:          req.Topic,
		Description:    req.Description,
		Location:       req.Location,
		Latitude:       decimal.NewFromFloat(*req.Latitude),
		Longitude:      decimal.NewFromFloat(*req.Longitude),
		MediaURL:       req.MediaURL,
		Status:         models.ComplaintStatusPending,
		Priority:       decimal.NewFromFloat(priority),
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}
	s.metrics.RecordModerationDecision(decisionAccepted)
	if complaint.MunicipalityID != nil {
		_ = s.cache.Invalidate(ctx, dashboardCachePattern(*complaint.MunicipalityID))
	}
	return complaint, nil
}
