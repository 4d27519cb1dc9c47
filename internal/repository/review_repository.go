package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/civic-triage-api/internal/models"
)

// ErrDuplicateReview signals that the complaint already has a review.
var ErrDuplicateReview = errors.New("complaint already reviewed")

const uniqueViolation = "23505"

// ReviewRepository persists complaint reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs the repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review. ErrDuplicateReview is returned when one already exists.
func (r *ReviewRepository) Create(ctx context.Context, review *models.ComplaintReview) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO complaint_reviews (id, complaint_id, user_id, rating, feedback, created_at)
	VALUES (:id, :complaint_id, :user_id, :rating, :feedback, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateReview
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ExistsForComplaint reports whether the complaint has been reviewed.
func (r *ReviewRepository) ExistsForComplaint(ctx context.Context, complaintID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM complaint_reviews WHERE complaint_id = $1)`, complaintID); err != nil {
		return false, fmt.Errorf("check review: %w", err)
	}
	return exists, nil
}

// ReviewedComplaintIDs returns which of the given complaints already carry a review.
func (r *ReviewRepository) ReviewedComplaintIDs(ctx context.Context, complaintIDs []string) (map[string]bool, error) {
	reviewed := make(map[string]bool, len(complaintIDs))
	if len(complaintIDs) == 0 {
		return reviewed, nil
	}
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT complaint_id FROM complaint_reviews WHERE complaint_id = ANY($1)`, pq.Array(complaintIDs)); err != nil {
		return nil, fmt.Errorf("list reviewed complaints: %w", err)
	}
	for _, id := range ids {
		reviewed[id] = true
	}
	return reviewed, nil
}

// ListByUser returns the reviews written by a user, newest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]models.ComplaintReview, error) {
	const query = `SELECT id, complaint_id, user_id, rating, feedback, created_at
	FROM complaint_reviews WHERE user_id = $1 ORDER BY created_at DESC, id`
	var reviews []models.ComplaintReview
	if err := r.db.SelectContext(ctx, &reviews, query, userID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
