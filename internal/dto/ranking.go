package dto

import "github.com/noah-isme/civic-triage-api/internal/models"

// RankingPageSize is the fixed number of complaints per ranked page.
const RankingPageSize = 8

// RankedComplaint pairs a complaint with the score it was ranked by.
type RankedComplaint struct {
	Complaint models.Complaint `json:"complaint"`
	Score     float64          `json:"score"`
}

// RankedPage is one page of the ranked complaint list.
type RankedPage struct {
	Page  int               `json:"page"`
	Total int               `json:"total"`
	Count int               `json:"count"`
	Items []RankedComplaint `json:"items"`
}
