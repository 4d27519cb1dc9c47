package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	"github.com/noah-isme/civic-triage-api/internal/repository"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type statusTransitionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	TransitionStatus(ctx context.Context, params models.StatusTransition) (*models.ComplaintActivity, error)
	ListActivities(ctx context.Context, complaintID string) ([]models.ComplaintActivity, error)
}

// LifecycleService moves complaints between statuses and keeps their audit trail.
type LifecycleService struct {
	complaints statusTransitionRepository
	authorizer *MunicipalityAuthorizer
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewLifecycleService constructs the service.
func NewLifecycleService(complaints statusTransitionRepository, authorizer *MunicipalityAuthorizer, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *LifecycleService {
	if authorizer == nil {
		authorizer = NewMunicipalityAuthorizer(nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		complaints: complaints,
		authorizer: authorizer,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// UpdateStatus applies a status change on behalf of actor. Requesting the
// current status is reported as TransitionNoChange and writes nothing.
func (s *LifecycleService) UpdateStatus(ctx context.Context, complaintID string, req dto.UpdateStatusRequest, actor *models.JWTClaims) (*dto.StatusTransitionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown complaint status")
	}

	complaint, err := s.load(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ctx, actor, complaint.MunicipalityID); err != nil {
		return nil, err
	}

	if complaint.Status == req.Status {
		return &dto.StatusTransitionResult{
			Outcome:        dto.TransitionNoChange,
			ComplaintID:    complaint.ID,
			PreviousStatus: complaint.Status,
			Status:         complaint.Status,
		}, nil
	}

	officialID := actor.UserID
	activity, err := s.complaints.TransitionStatus(ctx, models.StatusTransition{
		ComplaintID: complaint.ID,
		From:        complaint.Status,
		To:          req.Status,
		OfficialID:  &officialID,
		Remarks:     req.Remarks,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, appErrors.Clone(appErrors.ErrConflict, "complaint status was changed by another request")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update complaint status")
		}
	}

	s.metrics.RecordStatusTransition(string(req.Status))
	if complaint.MunicipalityID != nil {
		_ = s.cache.Invalidate(ctx, dashboardCachePattern(*complaint.MunicipalityID))
	}
	s.logger.Info("complaint status changed",
		zap.String("complaint_id", complaint.ID),
		zap.String("from", string(complaint.Status)),
		zap.String("to", string(req.Status)),
		zap.String("official_id", officialID),
	)

	return &dto.StatusTransitionResult{
		Outcome:        dto.TransitionApplied,
		ComplaintID:    complaint.ID,
		PreviousStatus: complaint.Status,
		Status:         req.Status,
		Activity:       activity,
	}, nil
}

// Activities returns the audit trail of a complaint, oldest first.
func (s *LifecycleService) Activities(ctx context.Context, complaintID string) ([]models.ComplaintActivity, error) {
	if _, err := s.load(ctx, complaintID); err != nil {
		return nil, err
	}
	activities, err := s.complaints.ListActivities(ctx, complaintID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaint activities")
	}
	if activities == nil {
		activities = []models.ComplaintActivity{}
	}
	return activities, nil
}

func (s *LifecycleService) load(ctx context.Context, complaintID string) (*models.Complaint, error) {
	complaint, err := s.complaints.FindByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	return complaint, nil
}
