// Package profile holds the domain types for evaluated persons and their
// assessment history, plus the submission gate that turns a finished answer
// set into a persisted, immutable assessment snapshot.
package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/saludlab/sf36-survey-backend/internal/scoring"
)

// User identifies the evaluated person. ID is typically an email and is the
// primary key of a profile.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Assessment is an immutable snapshot of one completed submission. It owns
// its answers and scores maps outright — NewAssessment deep-copies both, so
// no assessment ever shares state with the live editing answer set.
type Assessment struct {
	ID        string                        `json:"id"`
	Timestamp string                        `json:"timestamp"` // ISO-8601 / RFC 3339 UTC
	Answers   scoring.Answers               `json:"answers"`
	Scores    map[string]scoring.ScaleScore `json:"scores"`
	UserID    string                        `json:"user_id"`
	UserName  string                        `json:"user_name"`
	Notes     string                        `json:"notes,omitempty"`
}

// NewAssessment builds a snapshot from the current editing state. The answer
// and score maps are cloned; the timestamp is the current UTC instant.
func NewAssessment(user User, notes string, answers scoring.Answers, scores map[string]scoring.ScaleScore) Assessment {
	return Assessment{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Answers:   answers.Clone(),
		Scores:    scoring.CloneScores(scores),
		UserID:    user.ID,
		UserName:  user.Name,
		Notes:     notes,
	}
}

// Profile is one evaluated person plus their assessment history in
// chronological (insertion) order. Profiles are never deleted.
type Profile struct {
	User        User         `json:"user"`
	Notes       string       `json:"notes,omitempty"`
	Assessments []Assessment `json:"assessments"`
}

// LatestAssessment returns the most recent assessment by timestamp, or false
// when the history is empty.
func (p *Profile) LatestAssessment() (Assessment, bool) {
	if len(p.Assessments) == 0 {
		return Assessment{}, false
	}
	latest := p.Assessments[0]
	for _, a := range p.Assessments[1:] {
		if a.Timestamp > latest.Timestamp {
			latest = a
		}
	}
	return latest, true
}
