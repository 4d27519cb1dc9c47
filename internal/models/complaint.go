package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Department enumerates the municipal departments a complaint can target.
type Department string

const (
	DepartmentWater               Department = "Water"
	DepartmentElectricity         Department = "Electricity"
	DepartmentSanitation          Department = "Sanitation"
	DepartmentRoads               Department = "Roads"
	DepartmentIllegalDrainage     Department = "Illegal Drainage"
	DepartmentDumping             Department = "Dumping"
	DepartmentIllegalConstruction Department = "Illegal Construction"
	DepartmentPublicToilets       Department = "Public Toilets"
	DepartmentGarbageCollection   Department = "Garbage Collection"
	DepartmentOthers              Department = "Others"
)

// Departments lists every accepted department in display order.
var Departments = []Department{
	DepartmentWater,
	DepartmentElectricity,
	DepartmentSanitation,
	DepartmentRoads,
	DepartmentIllegalDrainage,
	DepartmentDumping,
	DepartmentIllegalConstruction,
	DepartmentPublicToilets,
	DepartmentGarbageCollection,
	DepartmentOthers,
}

// Valid reports whether the department is one of the fixed set.
func (d Department) Valid() bool {
	for _, candidate := range Departments {
		if d == candidate {
			return true
		}
	}
	return false
}

// ComplaintStatus captures the lifecycle states of a complaint.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "Pending"
	ComplaintStatusInProgress ComplaintStatus = "In Progress"
	ComplaintStatusResolved   ComplaintStatus = "Resolved"
	ComplaintStatusRejected   ComplaintStatus = "Rejected"
)

// ComplaintStatuses lists every accepted status.
var ComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
	ComplaintStatusRejected,
}

// OpenComplaintStatuses are the statuses eligible for ranking and duplicate detection.
var OpenComplaintStatuses = []ComplaintStatus{ComplaintStatusPending, ComplaintStatusInProgress}

// Valid reports whether the status is one of the fixed set.
func (s ComplaintStatus) Valid() bool {
	for _, candidate := range ComplaintStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Complaint is a citizen report stored in the complaints table.
type Complaint struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"user_id"`
	MunicipalityID *string         `db:"municipality_id" json:"municipality_id,omitempty"`
	Department     Department      `db:"department" json:"department"`
	Topic          string          `db:"topic" json:"topic"`
	Description    string          `db:"description" json:"description"`
	Location       string          `db:"location" json:"location"`
	Latitude       decimal.Decimal `db:"latitude" json:"latitude"`
	Longitude      decimal.Decimal `db:"longitude" json:"longitude"`
	MediaURL       *string         `db:"media_url" json:"media_url,omitempty"`
	Status         ComplaintStatus `db:"status" json:"status"`
	Priority       decimal.Decimal `db:"priority" json:"priority"`
	UpvoteCount    int             `db:"upvote_count" json:"total_upvotes"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
	// Reviewed is only populated on the submitter's own listing.
	Reviewed *bool `db:"-" json:"reviewed,omitempty"`
}

// ComplaintFilter constrains complaint listing queries.
type ComplaintFilter struct {
	MunicipalityID string
	UserID         string
	Status         ComplaintStatus
	Department     Department
	Page           int
	PageSize       int
}
