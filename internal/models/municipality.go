package models

import "github.com/shopspring/decimal"

// Municipality is a local government body complaints are routed to.
type Municipality struct {
	ID        string           `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	District  string           `db:"district" json:"district"`
	State     string           `db:"state" json:"state"`
	Latitude  *decimal.Decimal `db:"latitude" json:"latitude,omitempty"`
	Longitude *decimal.Decimal `db:"longitude" json:"longitude,omitempty"`
	Verified  bool             `db:"verified" json:"verified"`
}

// OfficialAssignment links an official to the municipality they act for.
type OfficialAssignment struct {
	UserID         string `db:"user_id" json:"user_id"`
	MunicipalityID string `db:"municipality_id" json:"municipality_id"`
	Designation    string `db:"designation" json:"designation"`
}
