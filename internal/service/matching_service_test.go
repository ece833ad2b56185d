package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorlink-api/internal/models"
	appErrors "github.com/noah-isme/tutorlink-api/pkg/errors"
)

type requestRepoStub struct {
	requests map[string]*models.TutoringRequest
	err      error
}

func (s requestRepoStub) FindByID(ctx context.Context, id string) (*models.TutoringRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	if req, ok := s.requests[id]; ok {
		return req, nil
	}
	return nil, sql.ErrNoRows
}

type pendingStoreStub struct {
	mu        sync.Mutex
	pending   []models.ApplicationWithProfile
	listErr   error
	updateErr error
	listCalls int
	updates   map[string]float64
	delay     time.Duration
	inflight  int32
	peak      int32
}

func (s *pendingStoreStub) ListPendingWithProfiles(ctx context.Context, requestID string) ([]models.ApplicationWithProfile, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.ApplicationWithProfile, len(s.pending))
	copy(out, s.pending)
	return out, nil
}

func (s *pendingStoreStub) UpdateMatchScore(ctx context.Context, id string, score float64) error {
	current := atomic.AddInt32(&s.inflight, 1)
	defer atomic.AddInt32(&s.inflight, -1)
	for {
		peak := atomic.LoadInt32(&s.peak)
		if current <= peak || atomic.CompareAndSwapInt32(&s.peak, peak, current) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updates == nil {
		s.updates = map[string]float64{}
	}
	s.updates[id] = score
	return nil
}

type ratingSourceStub struct {
	ratings map[string]float64
	err     error
}

func (s *ratingSourceStub) CurrentAverageRating(ctx context.Context, userID string) (*float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	if rating, ok := s.ratings[userID]; ok {
		return &rating, nil
	}
	return nil, nil
}

type tutorFinderStub struct {
	profiles []models.Profile
	err      error
	subject  string
}

func (s *tutorFinderStub) ListTutorsByExpertise(ctx context.Context, subject string) ([]models.Profile, error) {
	s.subject = subject
	return s.profiles, s.err
}

type notificationWriterStub struct {
	created [][]models.Notification
	err     error
}

func (s *notificationWriterStub) CreateMany(ctx context.Context, notifications []models.Notification) error {
	s.created = append(s.created, notifications)
	return s.err
}

var baseTime = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func calculusTutoringRequest() *models.TutoringRequest {
	return &models.TutoringRequest{
		ID:                "req-1",
		TuteeID:           "tutee-1",
		CourseSubject:     "calculus",
		TopicDescription:  "limits and derivatives",
		AvailabilitySlots: []byte(`[{"day":"Mon","start":"10:00","end":"12:00"}]`),
		MeetingFormat:     models.FormatVirtual,
		BudgetMin:         20,
		BudgetMax:         40,
		Status:            models.RequestStatusOpen,
	}
}

func pendingApplication(id, userID string, created time.Time, profile models.Profile) models.ApplicationWithProfile {
	profile.UserID = userID
	if profile.ID == "" {
		profile.ID = "profile-" + id
	}
	return models.ApplicationWithProfile{
		TutorApplication: models.TutorApplication{
			ID:             id,
			RequestID:      "req-1",
			TutorProfileID: profile.ID,
			Status:         models.ApplicationStatusPending,
			CreatedAt:      created,
		},
		TutorProfile: profile,
	}
}

func strongProfile() models.Profile {
	return models.Profile{
		AreasOfExpertise: []string{"calculus"},
		Availability:     []byte(`[{"day":"Mon","start":"09:00","end":"11:00"}]`),
		PreferredFormat:  models.FormatVirtual,
		HourlyRate:       floatPtr(30),
	}
}

func weakProfile() models.Profile {
	return models.Profile{
		AreasOfExpertise: []string{"chemistry"},
		Availability:     []byte(`[{"day":"Tue","start":"09:00","end":"11:00"}]`),
		PreferredFormat:  models.FormatInPerson,
		HourlyRate:       floatPtr(60),
	}
}

type matchingFixture struct {
	svc           *MatchingService
	requests      requestRepoStub
	store         *pendingStoreStub
	ratings       *ratingSourceStub
	tutors        *tutorFinderStub
	notifications *notificationWriterStub
}

func newMatchingFixture(pending ...models.ApplicationWithProfile) *matchingFixture {
	f := &matchingFixture{
		store:         &pendingStoreStub{pending: pending},
		ratings:       &ratingSourceStub{ratings: map[string]float64{}},
		tutors:        &tutorFinderStub{},
		notifications: &notificationWriterStub{},
	}
	f.requests = requestRepoStub{requests: map[string]*models.TutoringRequest{"req-1": calculusTutoringRequest()}}
	f.svc = NewMatchingService(f.requests, f.store, f.ratings, f.tutors, f.notifications, NewMetricsService(), MatchingConfig{MaxConcurrency: 4}, nil)
	return f
}

func TestRankApplicantsNotFound(t *testing.T) {
	f := newMatchingFixture(pendingApplication("app-1", "user-1", baseTime, strongProfile()))

	ranked, err := f.svc.RankApplicants(context.Background(), "missing")
	require.Error(t, err)
	assert.Nil(t, ranked)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
	assert.Equal(t, "tutoring request not found", appErrors.FromError(err).Message)
	assert.Zero(t, f.store.listCalls)
	assert.Empty(t, f.store.updates)
}

func TestRankApplicantsNoPending(t *testing.T) {
	f := newMatchingFixture()

	ranked, err := f.svc.RankApplicants(context.Background(), "req-1")
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRankApplicantsScoresPersistsAndSorts(t *testing.T) {
	f := newMatchingFixture(
		pendingApplication("app-weak", "user-weak", baseTime, weakProfile()),
		pendingApplication("app-strong", "user-strong", baseTime.Add(time.Hour), strongProfile()),
	)
	f.ratings.ratings["user-strong"] = 4

	ranked, err := f.svc.RankApplicants(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "app-strong", ranked[0].ID)
	assert.Equal(t, 100.0, ranked[0].ScoreOrZero())
	assert.Equal(t, 4.0, ranked[0].Breakdown.RatingBonus)
	require.NotNil(t, ranked[0].AverageRating)

	assert.Equal(t, "app-weak", ranked[1].ID)
	assert.Equal(t, 0.0, ranked[1].ScoreOrZero())
	assert.Nil(t, ranked[1].AverageRating)

	assert.Equal(t, map[string]float64{"app-strong": 100, "app-weak": 0}, f.store.updates)
}

func TestRankApplicantsTieBreaksByCreationThenID(t *testing.T) {
	f := newMatchingFixture(
		pendingApplication("app-c", "user-c", baseTime.Add(2*time.Minute), strongProfile()),
		pendingApplication("app-b", "user-b", baseTime, strongProfile()),
		pendingApplication("app-a", "user-a", baseTime, strongProfile()),
	)

	ranked, err := f.svc.RankApplicants(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"app-a", "app-b", "app-c"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})
}

func TestRankApplicantsIsIdempotent(t *testing.T) {
	f := newMatchingFixture(
		pendingApplication("app-1", "user-1", baseTime, strongProfile()),
		pendingApplication("app-2", "user-2", baseTime, weakProfile()),
		pendingApplication("app-3", "user-3", baseTime.Add(time.Minute), models.Profile{SelfReportedCourses: []string{"Calculus I"}}),
	)
	f.ratings.ratings["user-3"] = 5

	first, err := f.svc.RankApplicants(context.Background(), "req-1")
	require.NoError(t, err)
	firstUpdates := map[string]float64{}
	for k, v := range f.store.updates {
		firstUpdates[k] = v
	}

	second, err := f.svc.RankApplicants(context.Background(), "req-1")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].ScoreOrZero(), second[i].ScoreOrZero())
	}
	assert.Equal(t, firstUpdates, f.store.updates)
}

func TestRankApplicantsMalformedApplicantDoesNotFailBatch(t *testing.T) {
	broken := strongProfile()
	broken.Availability = []byte(`{"monday":"all day"}`)
	f := newMatchingFixture(
		pendingApplication("app-broken", "user-1", baseTime, broken),
		pendingApplication("app-ok", "user-2", baseTime, strongProfile()),
	)

	ranked, err := f.svc.RankApplicants(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "app-ok", ranked[0].ID)
	assert.Equal(t, "app-broken", ranked[1].ID)
	assert.Equal(t, 0.0, ranked[1].Breakdown.Availability)
	assert.Equal(t, 75.0, ranked[1].ScoreOrZero())
}

func TestRankApplicantsPersistFailure(t *testing.T) {
	f := newMatchingFixture(pendingApplication("app-1", "user-1", baseTime, strongProfile()))
	f.store.updateErr = errors.New("connection reset")

	ranked, err := f.svc.RankApplicants(context.Background(), "req-1")
	require.Error(t, err)
	assert.Nil(t, ranked)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))
}

func TestRankApplicantsRatingFailure(t *testing.T) {
	f := newMatchingFixture(pendingApplication("app-1", "user-1", baseTime, strongProfile()))
	f.ratings.err = errors.New("db down")

	_, err := f.svc.RankApplicants(context.Background(), "req-1")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))
	assert.Empty(t, f.store.updates)
}

func TestRankApplicantsBoundsConcurrency(t *testing.T) {
	var pending []models.ApplicationWithProfile
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		pending = append(pending, pendingApplication("app-"+id, "user-"+id, baseTime, strongProfile()))
	}
	f := newMatchingFixture(pending...)
	f.store.delay = 10 * time.Millisecond
	requests := requestRepoStub{requests: map[string]*models.TutoringRequest{"req-1": calculusTutoringRequest()}}
	svc := NewMatchingService(requests, f.store, f.ratings, f.tutors, f.notifications, nil, MatchingConfig{MaxConcurrency: 2}, nil)

	ranked, err := svc.RankApplicants(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Len(t, ranked, 6)
	assert.LessOrEqual(t, atomic.LoadInt32(&f.store.peak), int32(2))
	assert.Len(t, f.store.updates, 6)
}

func TestRefreshRankingPersistsScores(t *testing.T) {
	f := newMatchingFixture(
		pendingApplication("app-1", "user-1", baseTime, strongProfile()),
		pendingApplication("app-2", "user-2", baseTime, weakProfile()),
	)

	require.NoError(t, f.svc.RefreshRanking(context.Background(), "req-1"))
	assert.Len(t, f.store.updates, 2)
}

func TestRankApplicantsIgnoresCachedRatings(t *testing.T) {
	f := newMatchingFixture(pendingApplication("app-1", "user-1", baseTime, strongProfile()))

	cacheRepo := newCacheRepoStub()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	require.NoError(t, cache.Set(context.Background(), ratingCacheKey("user-1"), models.RatingSummary{AverageRating: floatPtr(1), TotalReviews: 1}, time.Minute))

	reviews := &reviewRepoStub{summaries: map[string]models.RatingSummary{
		"user-1": {AverageRating: floatPtr(5), TotalReviews: 2},
	}}
	ratings := NewRatingService(reviews, cache, time.Minute, nil)
	svc := NewMatchingService(f.requests, f.store, ratings, f.tutors, f.notifications, nil, MatchingConfig{}, nil)

	ranked, err := svc.RankApplicants(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	require.NotNil(t, ranked[0].AverageRating)
	assert.Equal(t, 5.0, *ranked[0].AverageRating)
	assert.Equal(t, 5.0, ranked[0].Breakdown.RatingBonus)
	assert.Equal(t, 1, reviews.calls)

	summary, hit, err := ratings.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 5.0, *summary.AverageRating)
}

func TestNotifyMatchingTutors(t *testing.T) {
	f := newMatchingFixture()
	f.tutors.profiles = []models.Profile{{ID: "p-1", UserID: "user-1"}, {ID: "p-2", UserID: "user-2"}}

	count, err := f.svc.NotifyMatchingTutors(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "calculus", f.tutors.subject)

	require.Len(t, f.notifications.created, 1)
	batch := f.notifications.created[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "user-1", batch[0].UserID)
	assert.Equal(t, models.NotificationNewMatchingRequest, batch[0].Type)
	assert.Equal(t, `A new tutoring request for "calculus" has been posted: limits and derivatives`, batch[0].Content)
	assert.NotEqual(t, batch[0].ID, batch[1].ID)
	assert.False(t, batch[0].IsRead)
}

func TestNotifyMatchingTutorsNoMatches(t *testing.T) {
	f := newMatchingFixture()

	count, err := f.svc.NotifyMatchingTutors(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.notifications.created)
}

func TestNotifyMatchingTutorsErrors(t *testing.T) {
	f := newMatchingFixture()

	_, err := f.svc.NotifyMatchingTutors(context.Background(), "missing")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	f.tutors.profiles = []models.Profile{{ID: "p-1", UserID: "user-1"}}
	f.notifications.err = errors.New("insert failed")
	_, err = f.svc.NotifyMatchingTutors(context.Background(), "req-1")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))
}

func TestFindTutoringRequestErrors(t *testing.T) {
	_, err := findTutoringRequest(context.Background(), requestRepoStub{}, "")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = findTutoringRequest(context.Background(), requestRepoStub{err: errors.New("timeout")}, "req-1")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))
}
