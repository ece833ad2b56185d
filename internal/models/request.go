package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// MeetingFormat is the preferred way a session takes place.
type MeetingFormat string

const (
	FormatInPerson MeetingFormat = "IN_PERSON"
	FormatVirtual  MeetingFormat = "VIRTUAL"
	FormatBoth     MeetingFormat = "BOTH"
)

// RequestStatus tracks a tutoring request lifecycle.
type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "OPEN"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusClosed     RequestStatus = "CLOSED"
)

// TutoringRequest is a tutee's posted need.
type TutoringRequest struct {
	ID                string         `db:"id" json:"id"`
	TuteeID           string         `db:"tutee_id" json:"tutee_id"`
	CourseSubject     string         `db:"course_subject" json:"course_subject"`
	TopicDescription  string         `db:"topic_description" json:"topic_description"`
	AvailabilitySlots types.JSONText `db:"availability_slots" json:"availability_slots"`
	MeetingFormat     MeetingFormat  `db:"meeting_format" json:"meeting_format"`
	BudgetMin         float64        `db:"budget_min" json:"budget_min"`
	BudgetMax         float64        `db:"budget_max" json:"budget_max"`
	Status            RequestStatus  `db:"status" json:"status"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// Availability classifies the stored availability slots.
func (r *TutoringRequest) Availability() Availability {
	return ParseAvailability(r.AvailabilitySlots)
}
