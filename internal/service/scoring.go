package service

import (
	"time"

	"github.com/noah-isme/civic-triage-api/internal/models"
)

const (
	scorePriorityWeight = 0.5
	scoreUpvoteWeight   = 0.3
	scoreAgeDecayPerDay = 0.02
)

// Score ranks a complaint by urgency, community support and age.
// The result is not clamped and may be negative for old complaints.
func Score(priority float64, upvotes int, ageDays float64) float64 {
	return priority*scorePriorityWeight + float64(upvotes)*scoreUpvoteWeight - ageDays*scoreAgeDecayPerDay
}

// AgeDays returns the fractional number of days between createdAt and now.
// A createdAt in the future yields 0.
func AgeDays(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	if age < 0 {
		return 0
	}
	return age.Hours() / 24
}

// ScoreComplaint computes the current score of a stored complaint.
func ScoreComplaint(complaint models.Complaint, now time.Time) float64 {
	priority, _ := complaint.Priority.Float64()
	return Score(priority, complaint.UpvoteCount, AgeDays(complaint.CreatedAt, now))
}
