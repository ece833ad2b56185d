package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorlink-api/internal/dto"
	"github.com/noah-isme/tutorlink-api/internal/models"
	"github.com/noah-isme/tutorlink-api/pkg/response"
)

type applicationService interface {
	AcceptApplication(ctx context.Context, applicationID string, claims *models.JWTClaims) (*dto.AcceptApplicationResponse, error)
}

// ApplicationHandler exposes application decisions.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler builds a new handler.
func NewApplicationHandler(service applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Accept godoc
// @Summary Accept a tutor application
// @Description Only the request owner may accept. Other pending applications are rejected.
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /applications/{id}/accept [post]
func (h *ApplicationHandler) Accept(c *gin.Context) {
	resp, err := h.service.AcceptApplication(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
