package models

import "time"

// ComplaintActivity is an append-only audit record of a status transition.
type ComplaintActivity struct {
	ID             string          `db:"id" json:"id"`
	ComplaintID    string          `db:"complaint_id" json:"complaint_id"`
	OfficialID     *string         `db:"official_id" json:"official_id,omitempty"`
	PreviousStatus ComplaintStatus `db:"previous_status" json:"previous_status"`
	NewStatus      ComplaintStatus `db:"new_status" json:"new_status"`
	Remarks        *string         `db:"remarks" json:"remarks,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// StatusTransition carries the inputs of an atomic status change.
type StatusTransition struct {
	ComplaintID string
	From        ComplaintStatus
	To          ComplaintStatus
	OfficialID  *string
	Remarks     *string
}
