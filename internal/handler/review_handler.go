package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorlink-api/internal/middleware"
	"github.com/noah-isme/tutorlink-api/internal/models"
	"github.com/noah-isme/tutorlink-api/pkg/response"
)

type ratingService interface {
	Summary(ctx context.Context, userID string) (*models.RatingSummary, bool, error)
}

// ReviewHandler exposes review aggregates.
type ReviewHandler struct {
	ratings ratingService
}

// NewReviewHandler builds a new handler.
func NewReviewHandler(ratings ratingService) *ReviewHandler {
	return &ReviewHandler{ratings: ratings}
}

// Rating godoc
// @Summary Get a user's average rating
// @Tags Reviews
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reviews/users/{userId}/rating [get]
func (h *ReviewHandler) Rating(c *gin.Context) {
	summary, hit, err := h.ratings.Summary(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
