package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/civic-triage-api/internal/models"
)

// ErrStatusConflict signals that the complaint status moved between read and transition.
var ErrStatusConflict = errors.New("complaint status changed concurrently")

const complaintColumns = `c.id, c.user_id, c.municipality_id, c.department, c.topic, c.description, c.location,
       c.latitude, c.longitude, c.media_url, c.status, c.priority, c.created_at, c.updated_at,
       (SELECT COUNT(*) FROM complaint_upvotes u WHERE u.complaint_id = c.id) AS upvote_count`

// ComplaintRepository persists complaints, their upvotes and status history.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs the repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a new complaint row.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.Status == "" {
		complaint.Status = models.ComplaintStatusPending
	}
	now := time.Now().UTC()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	complaint.UpdatedAt = complaint.CreatedAt
	complaint.Priority = complaint.Priority.Round(2)

	const query = `INSERT INTO complaints
	(id, user_id, municipality_id, department, topic, description, location, latitude, longitude, media_url, status, priority, created_at, updated_at)
	VALUES (:id, :user_id, :municipality_id, :department, :topic, :description, :location, :latitude, :longitude, :media_url, :status, :priority, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// FindByID fetches a complaint with its upvote total.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints c WHERE c.id = $1`
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		return nil, err
	}
	return &complaint, nil
}

// List returns a page of complaints matching the filter, newest first, with the total count.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)
	if filter.MunicipalityID != "" {
		args = append(args, filter.MunicipalityID)
		conditions = append(conditions, fmt.Sprintf("c.municipality_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("c.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("c.department = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM complaints c"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	// Pages past the last one are empty; checking first also keeps the offset from overflowing.
	if page-1 >= (total+size-1)/size {
		return []models.Complaint{}, total, nil
	}

	query := fmt.Sprintf("SELECT %s FROM complaints c%s ORDER BY c.created_at DESC, c.id LIMIT %d OFFSET %d",
		complaintColumns, where, size, (page-1)*size)

	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, total, nil
}

// ListOpen returns every Pending or In Progress complaint, optionally scoped to
// one municipality, newest first.
func (r *ComplaintRepository) ListOpen(ctx context.Context, municipalityID string) ([]models.Complaint, error) {
	statuses := make([]string, len(models.OpenComplaintStatuses))
	for i, s := range models.OpenComplaintStatuses {
		statuses[i] = string(s)
	}
	args := []interface{}{pq.Array(statuses)}
	query := `SELECT ` + complaintColumns + ` FROM complaints c WHERE c.status = ANY($1)`
	if municipalityID != "" {
		args = append(args, municipalityID)
		query += " AND c.municipality_id = $2"
	}
	query += " ORDER BY c.created_at DESC, c.id"

	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, fmt.Errorf("list open complaints: %w", err)
	}
	return complaints, nil
}

// ListByMunicipality returns every complaint of a municipality, newest first.
func (r *ComplaintRepository) ListByMunicipality(ctx context.Context, municipalityID string) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints c WHERE c.municipality_id = $1 ORDER BY c.created_at DESC, c.id`
	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, query, municipalityID); err != nil {
		return nil, fmt.Errorf("list municipality complaints: %w", err)
	}
	return complaints, nil
}

// TransitionStatus atomically records an activity and moves the complaint to
// the new status. The complaint row is locked for the duration, the stored
// status must still equal params.From, and the activity timestamp never
// precedes an earlier activity of the same complaint.
func (r *ComplaintRepository) TransitionStatus(ctx context.Context, params models.StatusTransition) (activity *models.ComplaintActivity, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.ComplaintStatus
	if err = tx.GetContext(ctx, &current, `SELECT status FROM complaints WHERE id = $1 FOR UPDATE`, params.ComplaintID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock complaint: %w", err)
	}
	if current != params.From {
		err = ErrStatusConflict
		return nil, err
	}

	now := time.Now().UTC()
	activity = &models.ComplaintActivity{
		ID:             uuid.NewString(),
		ComplaintID:    params.ComplaintID,
		OfficialID:     params.OfficialID,
		PreviousStatus: params.From,
		NewStatus:      params.To,
		Remarks:        params.Remarks,
	}
	const insertActivity = `INSERT INTO complaint_activities (id, complaint_id, official_id, previous_status, new_status, remarks, created_at)
SELECT $1, $2, $3, $4, $5, $6, GREATEST($7::timestamptz, COALESCE(MAX(created_at), $7::timestamptz))
FROM complaint_activities WHERE complaint_id = $2
RETURNING created_at`
	if err = tx.GetContext(ctx, &activity.CreatedAt, insertActivity,
		activity.ID, activity.ComplaintID, activity.OfficialID, activity.PreviousStatus, activity.NewStatus, activity.Remarks, now); err != nil {
		return nil, fmt.Errorf("insert complaint activity: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE complaints SET status = $1, updated_at = $2 WHERE id = $3`, params.To, now, params.ComplaintID); err != nil {
		return nil, fmt.Errorf("update complaint status: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status transaction: %w", err)
	}
	return activity, nil
}

// ListActivities returns the audit trail of a complaint in creation order.
func (r *ComplaintRepository) ListActivities(ctx context.Context, complaintID string) ([]models.ComplaintActivity, error) {
	const query = `SELECT id, complaint_id, official_id, previous_status, new_status, remarks, created_at
	FROM complaint_activities WHERE complaint_id = $1 ORDER BY created_at ASC, id ASC`
	var activities []models.ComplaintActivity
	if err := r.db.SelectContext(ctx, &activities, query, complaintID); err != nil {
		return nil, fmt.Errorf("list complaint activities: %w", err)
	}
	return activities, nil
}

// ToggleUpvote adds the user's upvote when absent and removes it when present
// in a single statement, then reports the resulting total.
func (r *ComplaintRepository) ToggleUpvote(ctx context.Context, complaintID, userID string) (bool, int, error) {
	const toggle = `WITH removed AS (
	DELETE FROM complaint_upvotes WHERE complaint_id = $1 AND user_id = $2 RETURNING 1
), inserted AS (
	INSERT INTO complaint_upvotes (complaint_id, user_id, created_at)
	SELECT $1, $2, NOW() WHERE NOT EXISTS (SELECT 1 FROM removed)
	ON CONFLICT (complaint_id, user_id) DO NOTHING
	RETURNING 1
)
SELECT EXISTS (SELECT 1 FROM inserted)`
	var upvoted bool
	if err := r.db.GetContext(ctx, &upvoted, toggle, complaintID, userID); err != nil {
		return false, 0, fmt.Errorf("toggle upvote: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM complaint_upvotes WHERE complaint_id = $1`, complaintID); err != nil {
		return false, 0, fmt.Errorf("count upvotes: %w", err)
	}
	return upvoted, total, nil
}

// CreateComment inserts a comment row.
func (r *ComplaintRepository) CreateComment(ctx context.Context, comment *models.ComplaintComment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO complaint_comments (id, complaint_id, user_id, content, created_at)
	VALUES (:id, :complaint_id, :user_id, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListComments returns the comments of a complaint, newest first.
func (r *ComplaintRepository) ListComments(ctx context.Context, complaintID string) ([]models.ComplaintComment, error) {
	const query = `SELECT id, complaint_id, user_id, content, created_at
	FROM complaint_comments WHERE complaint_id = $1 ORDER BY created_at DESC, id`
	var comments []models.ComplaintComment
	if err := r.db.SelectContext(ctx, &comments, query, complaintID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
