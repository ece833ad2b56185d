package models

import "time"

// Notification types emitted by the matching flows.
const (
	NotificationNewMatchingRequest  = "NEW_MATCHING_REQUEST"
	NotificationApplicationAccepted = "APPLICATION_ACCEPTED"
)

// Notification is an in-app message addressed to a user.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Content   string    `db:"content" json:"content"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
