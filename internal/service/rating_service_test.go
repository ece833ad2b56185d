package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorlink-api/internal/models"
	appErrors "github.com/noah-isme/tutorlink-api/pkg/errors"
)

type reviewRepoStub struct {
	summaries map[string]models.RatingSummary
	err       error
	calls     int
}

func (s *reviewRepoStub) RatingSummary(ctx context.Context, userID string) (*models.RatingSummary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	summary := s.summaries[userID]
	summary.UserID = userID
	return &summary, nil
}

func TestRatingServiceWithoutCache(t *testing.T) {
	reviews := &reviewRepoStub{summaries: map[string]models.RatingSummary{
		"user-1": {AverageRating: floatPtr(4.5), TotalReviews: 2},
	}}
	svc := NewRatingService(reviews, nil, time.Minute, nil)

	avg, err := svc.CurrentAverageRating(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 4.5, *avg)

	avg, err = svc.CurrentAverageRating(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Nil(t, avg)
	assert.Equal(t, 2, reviews.calls)
}

func TestRatingServiceCachesSummary(t *testing.T) {
	reviews := &reviewRepoStub{summaries: map[string]models.RatingSummary{
		"user-1": {AverageRating: floatPtr(4), TotalReviews: 1},
	}}
	cache := NewCacheService(newCacheRepoStub(), nil, time.Minute, nil, true)
	svc := NewRatingService(reviews, cache, time.Minute, nil)

	_, hit, err := svc.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, hit)

	summary, hit, err := svc.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "user-1", summary.UserID)
	assert.Equal(t, 1, reviews.calls)

}

func TestCurrentAverageRatingSkipsCache(t *testing.T) {
	reviews := &reviewRepoStub{summaries: map[string]models.RatingSummary{
		"user-1": {AverageRating: floatPtr(4), TotalReviews: 1},
	}}
	cache := NewCacheService(newCacheRepoStub(), nil, time.Minute, nil, true)
	svc := NewRatingService(reviews, cache, time.Minute, nil)

	_, _, err := svc.Summary(context.Background(), "user-1")
	require.NoError(t, err)

	reviews.summaries["user-1"] = models.RatingSummary{AverageRating: floatPtr(2.5), TotalReviews: 2}
	avg, err := svc.CurrentAverageRating(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 2.5, *avg)
	assert.Equal(t, 2, reviews.calls)

	summary, hit, err := svc.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, summary.TotalReviews)
}

func TestCurrentAverageRatingDropsStaleEntryWhenWriteFails(t *testing.T) {
	repo := newCacheRepoStub()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	require.NoError(t, cache.Set(context.Background(), ratingCacheKey("user-1"), models.RatingSummary{TotalReviews: 1}, 0))
	repo.setErr = errors.New("redis read-only")

	svc := NewRatingService(&reviewRepoStub{}, cache, time.Minute, nil)
	_, err := svc.CurrentAverageRating(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{ratingCacheKey("user-1")}, repo.deleted)
	assert.NotContains(t, repo.values, ratingCacheKey("user-1"))
}

func TestRatingServiceCacheFailureFallsBack(t *testing.T) {
	repo := newCacheRepoStub()
	repo.getErr = errors.New("redis down")
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	reviews := &reviewRepoStub{}
	svc := NewRatingService(reviews, cache, time.Minute, nil)

	summary, hit, err := svc.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, summary.TotalReviews)
}

func TestRatingServiceErrors(t *testing.T) {
	svc := NewRatingService(&reviewRepoStub{err: errors.New("db down")}, nil, time.Minute, nil)

	_, _, err := svc.Summary(context.Background(), "user-1")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))

	_, _, err = svc.Summary(context.Background(), "")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.CurrentAverageRating(context.Background(), "")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}
