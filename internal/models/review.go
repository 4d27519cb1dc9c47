package models

import "time"

// ComplaintReview is the submitter's feedback on a resolved complaint.
type ComplaintReview struct {
	ID          string    `db:"id" json:"id"`
	ComplaintID string    `db:"complaint_id" json:"complaint_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Rating      int       `db:"rating" json:"rating"`
	Feedback    string    `db:"feedback" json:"feedback"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
