package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorlink-api/internal/models"
	appErrors "github.com/noah-isme/tutorlink-api/pkg/errors"
)

const ratingCachePrefix = "ratings:summary:"

type ratingReader interface {
	RatingSummary(ctx context.Context, userID string) (*models.RatingSummary, error)
}

// RatingService serves review aggregates. Summary reads through the cache and may lag new
// reviews by up to ttl; ranking uses CurrentAverageRating, which always hits the database.
type RatingService struct {
	reviews ratingReader
	cache   *CacheService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewRatingService constructs a RatingService. cache may be nil.
func NewRatingService(reviews ratingReader, cache *CacheService, ttl time.Duration, logger *zap.Logger) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{reviews: reviews, cache: cache, ttl: ttl, logger: logger}
}

func ratingCacheKey(userID string) string {
	return ratingCachePrefix + userID
}

// Summary returns the user's review aggregate and whether it came from cache.
func (s *RatingService) Summary(ctx context.Context, userID string) (*models.RatingSummary, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}

	var cached models.RatingSummary
	if hit, err := s.cache.Get(ctx, ratingCacheKey(userID), &cached); err == nil && hit {
		cached.UserID = userID
		return &cached, true, nil
	}

	summary, err := s.load(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return summary, false, nil
}

// CurrentAverageRating aggregates the user's reviews from the database, skipping any cached
// summary, and returns nil when they have no reviews. The fresh summary replaces the
// cached one.
func (s *RatingService) CurrentAverageRating(ctx context.Context, userID string) (*float64, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	summary, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summary.AverageRating, nil
}

func (s *RatingService) load(ctx context.Context, userID string) (*models.RatingSummary, error) {
	summary, err := s.reviews.RatingSummary(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rating summary")
	}
	key := ratingCacheKey(userID)
	if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
		// an older entry must not outlive a fresher read
		_ = s.cache.Invalidate(ctx, key)
	}
	return summary, nil
}
