package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type complaintRepository interface {
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error)
	ToggleUpvote(ctx context.Context, complaintID, userID string) (bool, int, error)
	CreateComment(ctx context.Context, comment *models.ComplaintComment) error
	ListComments(ctx context.Context, complaintID string) ([]models.ComplaintComment, error)
}

type reviewedLookup interface {
	ReviewedComplaintIDs(ctx context.Context, complaintIDs []string) (map[string]bool, error)
}

// ComplaintService serves complaint reads, upvotes and comments.
type ComplaintService struct {
	repo           complaintRepository
	municipalities municipalityFinder
	reviews        reviewedLookup
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewComplaintService constructs the service. reviews may be nil, in which case
// the caller's own listing carries no review flag.
func NewComplaintService(repo complaintRepository, municipalities municipalityFinder, reviews reviewedLookup, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{repo: repo, municipalities: municipalities, reviews: reviews, validator: validate, logger: logger}
}

// Get returns a complaint with its comments.
func (s *ComplaintService) Get(ctx context.Context, id string) (*dto.ComplaintDetail, error) {
	complaint, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.Comments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ComplaintDetail{Complaint: *complaint, Comments: comments}, nil
}

// List returns complaints newest first. Mine restricts the list to the
// caller's own complaints and marks each one with whether it has been reviewed.
func (s *ComplaintService) List(ctx context.Context, query dto.ComplaintQuery, actor *models.JWTClaims) ([]models.Complaint, *models.Pagination, error) {
	if query.Status != "" && !query.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown complaint status")
	}
	if query.Department != "" && !query.Department.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}
	filter := models.ComplaintFilter{
		MunicipalityID: strings.TrimSpace(query.MunicipalityID),
		Status:         query.Status,
		Department:     query.Department,
		Page:           query.Page,
		PageSize:       query.PageSize,
	}
	if query.Mine {
		if actor == nil || actor.UserID == "" {
			return nil, nil, appErrors.ErrUnauthorized
		}
		filter.UserID = actor.UserID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	complaints, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	if complaints == nil {
		complaints = []models.Complaint{}
	}
	if query.Mine {
		if err := s.markReviewed(ctx, complaints); err != nil {
			return nil, nil, err
		}
	}
	return complaints, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ListByMunicipality lists the complaints of an existing municipality.
func (s *ComplaintService) ListByMunicipality(ctx context.Context, municipalityID string, query dto.ComplaintQuery) ([]models.Complaint, *models.Pagination, error) {
	if _, err := s.municipalities.FindByID(ctx, municipalityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "municipality not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load municipality")
	}
	query.MunicipalityID = municipalityID
	query.Mine = false
	return s.List(ctx, query, nil)
}

// ToggleUpvote adds the caller's upvote, or removes it when already present.
func (s *ComplaintService) ToggleUpvote(ctx context.Context, complaintID string, actor *models.JWTClaims) (*dto.UpvoteResult, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if _, err := s.find(ctx, complaintID); err != nil {
		return nil, err
	}
	upvoted, total, err := s.repo.ToggleUpvote(ctx, complaintID, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle upvote")
	}
	message := "Upvote removed"
	if upvoted {
		message = "Upvoted"
	}
	return &dto.UpvoteResult{Message: message, Upvoted: upvoted, TotalUpvotes: total}, nil
}

// AddComment attaches a comment from actor to the complaint.
func (s *ComplaintService) AddComment(ctx context.Context, complaintID string, req dto.CreateCommentRequest, actor *models.JWTClaims) (*models.ComplaintComment, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}
	if _, err := s.find(ctx, complaintID); err != nil {
		return nil, err
	}
	comment := &models.ComplaintComment{ComplaintID: complaintID, UserID: actor.UserID, Content: req.Content}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}
	return comment, nil
}

// Comments lists a complaint's comments, newest first.
func (s *ComplaintService) Comments(ctx context.Context, complaintID string) ([]models.ComplaintComment, error) {
	comments, err := s.repo.ListComments(ctx, complaintID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	if comments == nil {
		comments = []models.ComplaintComment{}
	}
	return comments, nil
}

func (s *ComplaintService) find(ctx context.Context, id string) (*models.Complaint, error) {
	complaint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	return complaint, nil
}

func (s *ComplaintService) markReviewed(ctx context.Context, complaints []models.Complaint) error {
	if s.reviews == nil || len(complaints) == 0 {
		return nil
	}
	ids := make([]string, len(complaints))
	for i, c := range complaints {
		ids[i] = c.ID
	}
	reviewed, err := s.reviews.ReviewedComplaintIDs(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review status")
	}
	for i := range complaints {
		flag := reviewed[complaints[i].ID]
		complaints[i].Reviewed = &flag
	}
	return nil
}
