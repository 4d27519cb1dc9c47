package dto

import "github.com/noah-isme/civic-triage-api/internal/models"

// SubmitComplaintRequest is the payload for filing a new complaint.
type SubmitComplaintRequest struct {
	MunicipalityID *string           `json:"municipality_id" validate:"omitempty,min=1"`
	Department     models.Department `json:"department" validate:"required"`
	Topic          string            `json:"topic" validate:"required,max=255"`
	Description    string            `json:"description" validate:"required"`
	Location       string            `json:"location" validate:"required,max=255"`
	Latitude       *float64          `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude      *float64          `json:"longitude" validate:"required,gte=-180,lte=180"`
	MediaURL       *string           `json:"media_url" validate:"omitempty,url"`
}

// ComplaintQuery mirrors supported complaint listing filters.
type ComplaintQuery struct {
	MunicipalityID string                 `form:"municipality_id"`
	Status         models.ComplaintStatus `form:"status"`
	Department     models.Department      `form:"department"`
	Mine           bool                   `form:"mine"`
	Page           int                    `form:"page"`
	PageSize       int                    `form:"page_size"`
}

// ComplaintDetail bundles a complaint with its discussion thread.
type ComplaintDetail struct {
	models.Complaint
	Comments []models.ComplaintComment `json:"comments"`
}

// UpvoteResult reports the outcome of an upvote toggle.
type UpvoteResult struct {
	Message      string `json:"message"`
	Upvoted      bool   `json:"upvoted"`
	TotalUpvotes int    `json:"total_upvotes"`
}

// CreateCommentRequest is the payload for commenting on a complaint.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}
