package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorlink-api/internal/models"
	appErrors "github.com/noah-isme/tutorlink-api/pkg/errors"
)

type cacheRepoStub struct {
	values  map[string][]byte
	getErr  error
	setErr  error
	deleted []string
	sets    int
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{values: map[string][]byte{}}
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	raw, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	return nil
}

func (s *cacheRepoStub) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	s.deleted = append(s.deleted, keys...)
	return nil
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", models.RatingSummary{TotalReviews: 1}, 0))
	hit, err := svc.Get(context.Background(), "k", &models.RatingSummary{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, repo.sets)
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)

	var dest models.RatingSummary
	hit, err := svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), "k", models.RatingSummary{TotalReviews: 2}, 0))
	hit, err = svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, dest.TotalReviews)

	require.NoError(t, svc.Invalidate(context.Background(), "k"))
	assert.Equal(t, []string{"k"}, repo.deleted)
}

func TestCacheServiceGetError(t *testing.T) {
	repo := newCacheRepoStub()
	repo.getErr = errors.New("redis down")
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	hit, err := svc.Get(context.Background(), "k", &models.RatingSummary{})
	assert.Error(t, err)
	assert.False(t, hit)
}
