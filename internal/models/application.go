package models

import "time"

// ApplicationStatus tracks the state of a tutor's application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusAccepted ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// TutorApplication relates a tutor profile to a tutoring request. MatchScore is the
// last ranking result and is overwritten on every ranking pass.
type TutorApplication struct {
	ID             string            `db:"id" json:"id"`
	RequestID      string            `db:"request_id" json:"request_id"`
	TutorProfileID string            `db:"tutor_profile_id" json:"tutor_profile_id"`
	MatchScore     *float64          `db:"match_score" json:"match_score"`
	Status         ApplicationStatus `db:"status" json:"status"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
}

// ApplicationWithProfile is an application joined with the applying tutor's profile.
type ApplicationWithProfile struct {
	TutorApplication
	TutorProfile Profile `db:"tutor_profile" json:"tutor_profile"`
}

// ScoreOrZero returns the stored match score, treating an unscored application as 0.
func (a *TutorApplication) ScoreOrZero() float64 {
	if a.MatchScore == nil {
		return 0
	}
	return *a.MatchScore
}
