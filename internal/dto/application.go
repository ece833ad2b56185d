package dto

import "github.com/noah-isme/tutorlink-api/internal/models"

// AcceptApplicationResponse is returned once an application is accepted.
type AcceptApplicationResponse struct {
	ApplicationID string                   `json:"applicationId"`
	RequestID     string                   `json:"requestId"`
	Status        models.ApplicationStatus `json:"status"`
	RequestStatus models.RequestStatus     `json:"requestStatus"`
}
