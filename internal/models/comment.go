package models

import "time"

// ComplaintComment is a free-text note left on a complaint.
type ComplaintComment struct {
	ID          string    `db:"id" json:"id"`
	ComplaintID string    `db:"complaint_id" json:"complaint_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
