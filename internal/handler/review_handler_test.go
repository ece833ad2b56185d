package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorlink-api/internal/models"
)

type ratingServiceMock struct {
	summary *models.RatingSummary
	hit     bool
	err     error
}

func (m *ratingServiceMock) Summary(ctx context.Context, userID string) (*models.RatingSummary, bool, error) {
	return m.summary, m.hit, m.err
}

func TestReviewHandlerRating(t *testing.T) {
	avg := 4.25
	h := NewReviewHandler(&ratingServiceMock{summary: &models.RatingSummary{UserID: "user-1", AverageRating: &avg, TotalReviews: 4}, hit: true})

	c, w := newTestContext(http.MethodGet, "/reviews/users/user-1/rating", gin.Params{{Key: "userId", Value: "user-1"}})
	h.Rating(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data models.RatingSummary  `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Data.TotalReviews)
	assert.Equal(t, true, body.Meta["cache_hit"])
}
