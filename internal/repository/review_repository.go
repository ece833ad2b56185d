package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutorlink-api/internal/models"
)

// ReviewRepository aggregates review data.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs the repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// RatingSummary averages every review where the user is the reviewee. AverageRating is
// nil when there are none.
func (r *ReviewRepository) RatingSummary(ctx context.Context, userID string) (*models.RatingSummary, error) {
	const query = `SELECT AVG(rating)::float8 AS average_rating, COUNT(*) AS total_reviews FROM reviews WHERE reviewee_id = $1`
	var summary models.RatingSummary
	if err := r.db.GetContext(ctx, &summary, query, userID); err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}
	summary.UserID = userID
	return &summary, nil
}
