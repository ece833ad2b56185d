package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Profile holds the public tutoring attributes of a user.
type Profile struct {
	ID                  string         `db:"id" json:"id"`
	UserID              string         `db:"user_id" json:"user_id"`
	DisplayName         string         `db:"display_name" json:"display_name"`
	SelfReportedCourses pq.StringArray `db:"self_reported_courses" json:"self_reported_courses"`
	AreasOfExpertise    pq.StringArray `db:"areas_of_expertise" json:"areas_of_expertise"`
	HourlyRate          *float64       `db:"hourly_rate" json:"hourly_rate,omitempty"`
	Availability        types.JSONText `db:"availability" json:"availability,omitempty"`
	PreferredFormat     MeetingFormat  `db:"preferred_format" json:"preferred_format"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
}

// AvailabilitySlots classifies the stored tutor availability.
func (p *Profile) AvailabilitySlots() Availability {
	return ParseAvailability(p.Availability)
}
