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

type reviewRepository interface {
	Create(ctx context.Context, review *models.ComplaintReview) error
	ExistsForComplaint(ctx context.Context, complaintID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.ComplaintReview, error)
}

type complaintFinder interface {
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
}

// ReviewService records submitter feedback on resolved complaints.
type ReviewService struct {
	reviews    reviewRepository
	complaints complaintFinder
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewReviewService constructs the service.
func NewReviewService(reviews reviewRepository, complaints complaintFinder, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{reviews: reviews, complaints: complaints, validator: validate, logger: logger}
}

// Create stores a review. Only the submitter may review, only once, and only after resolution.
func (s *ReviewService) Create(ctx context.Context, req dto.CreateReviewRequest, actor *models.JWTClaims) (*models.ComplaintReview, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	complaint, err := s.complaints.FindByID(ctx, req.ComplaintID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	if complaint.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the submitter can review a complaint")
	}
	if complaint.Status != models.ComplaintStatusResolved {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only resolved complaints can be reviewed")
	}
	exists, err := s.reviews.ExistsForComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing review")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "complaint already reviewed")
	}

	review := &models.ComplaintReview{
		ComplaintID: complaint.ID,
		UserID:      actor.UserID,
		Rating:      req.Rating,
		Feedback:    req.Feedback,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "complaint already reviewed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create review")
	}
	return review, nil
}

// Mine lists the caller's reviews.
func (s *ReviewService) Mine(ctx context.Context, actor *models.JWTClaims) ([]models.ComplaintReview, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	reviews, err := s.reviews.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	if reviews == nil {
		reviews = []models.ComplaintReview{}
	}
	return reviews, nil
}
