package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorlink-api/internal/dto"
	"github.com/noah-isme/tutorlink-api/internal/models"
	"github.com/noah-isme/tutorlink-api/internal/service"
	appErrors "github.com/noah-isme/tutorlink-api/pkg/errors"
	"github.com/noah-isme/tutorlink-api/pkg/response"
)

type matchingService interface {
	RankApplicants(ctx context.Context, requestID string) ([]models.RankedApplication, error)
	NotifyMatchingTutors(ctx context.Context, requestID string) (int, error)
}

type rankRefreshService interface {
	Enqueue(ctx context.Context, requestID string) (*dto.RankRefreshResponse, error)
}

type rankingExporter interface {
	ExportRanking(ctx context.Context, requestID string, query dto.RankingExportQuery) (*service.ExportResult, error)
}

// MatchingHandler exposes applicant ranking endpoints.
type MatchingHandler struct {
	matching matchingService
	refresh  rankRefreshService
	exporter rankingExporter
}

// NewMatchingHandler builds a new handler.
func NewMatchingHandler(matching matchingService, refresh rankRefreshService, exporter rankingExporter) *MatchingHandler {
	return &MatchingHandler{matching: matching, refresh: refresh, exporter: exporter}
}

// Rank godoc
// @Summary Rank pending applicants for a tutoring request
// @Description Scores every pending application, stores the score and returns applicants best first.
// @Tags Matching
// @Produce json
// @Param requestId path string true "Tutoring request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /matching/rank/{requestId} [get]
func (h *MatchingHandler) Rank(c *gin.Context) {
	requestID := c.Param("requestId")
	ranked, err := h.matching.RankApplicants(c.Request.Context(), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.RankingResponse{RequestID: requestID, Applicants: ranked}, nil)
}

// Refresh godoc
// @Summary Queue a background re-rank
// @Tags Matching
// @Produce json
// @Param requestId path string true "Tutoring request ID"
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /matching/rank/{requestId}/refresh [post]
func (h *MatchingHandler) Refresh(c *gin.Context) {
	resp, err := h.refresh.Enqueue(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, resp)
}

// Export godoc
// @Summary Download the applicant ranking
// @Tags Matching
// @Produce text/csv
// @Produce application/pdf
// @Param requestId path string true "Tutoring request ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /matching/rank/{requestId}/export [get]
func (h *MatchingHandler) Export(c *gin.Context) {
	var query dto.RankingExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	result, err := h.exporter.ExportRanking(c.Request.Context(), c.Param("requestId"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

// Notify godoc
// @Summary Notify tutors whose expertise matches the request subject
// @Tags Matching
// @Produce json
// @Param requestId path string true "Tutoring request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /matching/notify/{requestId} [post]
func (h *MatchingHandler) Notify(c *gin.Context) {
	requestID := c.Param("requestId")
	count, err := h.matching.NotifyMatchingTutors(c.Request.Context(), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NotifyTutorsResponse{RequestID: requestID, NotifiedCount: count}, nil)
}
