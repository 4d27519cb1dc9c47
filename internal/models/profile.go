package models

const (
	// InitialHonestyScore is granted to every new profile.
	InitialHonestyScore = 100
	// MinimumHonestyScore is the lowest score allowed to submit complaints.
	MinimumHonestyScore = 30
	// LowUrgencyPenalty is deducted for each rejected low-urgency submission.
	LowUrgencyPenalty = 10
)
