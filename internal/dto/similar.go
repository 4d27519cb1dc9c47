package dto

import "github.com/noah-isme/civic-triage-api/internal/models"

// MatchSource identifies which detector path flagged a duplicate.
type MatchSource string

const (
	MatchedByClassifier MatchSource = "classifier"
	MatchedByFuzzy      MatchSource = "fuzzy"
)

// SimilarQuery describes a prospective complaint to check for duplicates.
type SimilarQuery struct {
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Description    string   `json:"description"`
	MunicipalityID string   `json:"municipality_id"`
}

// SimilarComplaint is an existing open complaint flagged as a likely duplicate.
type SimilarComplaint struct {
	Complaint  models.Complaint `json:"complaint"`
	DistanceKM float64          `json:"distance_km"`
	MatchedBy  MatchSource      `json:"matched_by"`
	Similarity *float64         `json:"similarity,omitempty"`
}
