package models

// RatingSummary aggregates the reviews a user received.
type RatingSummary struct {
	UserID        string   `db:"-" json:"user_id"`
	AverageRating *float64 `db:"average_rating" json:"average_rating"`
	TotalReviews  int      `db:"total_reviews" json:"total_reviews"`
}
