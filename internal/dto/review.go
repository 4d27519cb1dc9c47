package dto

// CreateReviewRequest captures a citizen's rating of a resolved complaint.
type CreateReviewRequest struct {
	ComplaintID string `json:"complaint_id" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback    string `json:"feedback" validate:"max=2000"`
}
