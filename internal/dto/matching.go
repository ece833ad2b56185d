package dto

import "github.com/noah-isme/tutorlink-api/internal/models"

// Export formats accepted by the ranking export.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// Refresh job states reported to callers.
const (
	RefreshStatusQueued        = "QUEUED"
	RefreshStatusAlreadyQueued = "ALREADY_QUEUED"
)

// RankingResponse is returned by GET /matching/rank/:requestId.
type RankingResponse struct {
	RequestID  string                     `json:"requestId"`
	Applicants []models.RankedApplication `json:"applicants"`
}

// RankRefreshResponse is returned after a re-rank is handed to the background queue.
type RankRefreshResponse struct {
	RequestID string `json:"requestId"`
	JobID     string `json:"jobId,omitempty"`
	Status    string `json:"status"`
}

// NotifyTutorsResponse reports how many tutors were notified about a request.
type NotifyTutorsResponse struct {
	RequestID     string `json:"requestId"`
	NotifiedCount int    `json:"notifiedCount"`
}

// RankingExportQuery captures GET /matching/rank/:requestId/export query params.
type RankingExportQuery struct {
	Format string `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
}
