package models

// MatchBreakdown exposes every sub-score next to the final result.
type MatchBreakdown struct {
	Expertise    float64 `json:"expertise"`
	Availability float64 `json:"availability"`
	Format       float64 `json:"format"`
	Budget       float64 `json:"budget"`
	Weighted     float64 `json:"weighted"`
	RatingBonus  float64 `json:"rating_bonus"`
	Total        float64 `json:"total"`
}

// RankedApplication is a pending application after a ranking pass.
type RankedApplication struct {
	ApplicationWithProfile
	AverageRating *float64       `json:"average_rating"`
	Breakdown     MatchBreakdown `json:"breakdown"`
}
