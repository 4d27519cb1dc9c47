package classifier

import (
	"fmt"
	"strings"
)

const urgencySystemPrompt = `You triage complaints filed by citizens with their municipality.
Rate how urgently the complaint needs official attention on a scale from 0 to 1,
where 1 is an immediate danger to life, health or property and 0 is not actionable
or not a civic issue at all. Reply with the number only.`

const duplicatesSystemPrompt = `You detect duplicate civic complaints.
You receive a new complaint and a list of existing open complaints nearby.
Return a JSON array with the ids of the existing complaints that report the same
underlying problem as the new complaint. Return [] when none match.
Reply with JSON only.`

func urgencyPrompt(description string) string {
	return "Complaint:\n" + strings.TrimSpace(description)
}

func duplicatesPrompt(description string, candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("New complaint:\n")
	b.WriteString(strings.TrimSpace(description))
	b.WriteString("\n\nExisting complaints:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id: %s\n  topic: %s\n  description: %s\n", c.ID, oneLine(c.Topic), oneLine(c.Description))
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
