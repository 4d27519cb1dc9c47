package dto

import "github.com/noah-isme/civic-triage-api/internal/models"

// TransitionOutcome reports whether a status change was applied.
type TransitionOutcome string

const (
	TransitionApplied  TransitionOutcome = "APPLIED"
	TransitionNoChange TransitionOutcome = "NO_CHANGE"
)

// UpdateStatusRequest is the payload for moving a complaint to a new status.
type UpdateStatusRequest struct {
	Status  models.ComplaintStatus `json:"status" validate:"required"`
	Remarks *string                `json:"remarks" validate:"omitempty,max=2000"`
}

// StatusTransitionResult describes the effect of a status change request.
type StatusTransitionResult struct {
	Outcome        TransitionOutcome         `json:"outcome"`
	ComplaintID    string                    `json:"complaint_id"`
	PreviousStatus models.ComplaintStatus    `json:"previous_status"`
	Status         models.ComplaintStatus    `json:"status"`
	Activity       *models.ComplaintActivity `json:"activity,omitempty"`
}
