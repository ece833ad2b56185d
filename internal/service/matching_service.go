package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorlink-api/internal/models"
	appErrors "github.com/noah-isme/tutorlink-api/pkg/errors"
	"github.com/noah-isme/tutorlink-api/pkg/logger"
)

const (
	defaultMatchingConcurrency = 8
	tracerName                 = "github.com/noah-isme/tutorlink-api/internal/service"
)

type requestReader interface {
	FindByID(ctx context.Context, id string) (*models.TutoringRequest, error)
}

type pendingApplicationStore interface {
	ListPendingWithProfiles(ctx context.Context, requestID string) ([]models.ApplicationWithProfile, error)
	UpdateMatchScore(ctx context.Context, id string, score float64) error
}

type tutorRatingSource interface {
	CurrentAverageRating(ctx context.Context, userID string) (*float64, error)
}

type tutorFinder interface {
	ListTutorsByExpertise(ctx context.Context, subject string) ([]models.Profile, error)
}

type notificationWriter interface {
	CreateMany(ctx context.Context, notifications []models.Notification) error
}

// MatchingConfig tunes the ranking fan-out.
type MatchingConfig struct {
	MaxConcurrency int
}

// MatchingService scores pending applications against their tutoring request.
type MatchingService struct {
	requests      requestReader
	applications  pendingApplicationStore
	ratings       tutorRatingSource
	tutors        tutorFinder
	notifications notificationWriter
	metrics       *MetricsService
	tracer        trace.Tracer
	logger        *zap.Logger
	cfg           MatchingConfig
}

// NewMatchingService constructs a MatchingService.
func NewMatchingService(
	requests requestReader,
	applications pendingApplicationStore,
	ratings tutorRatingSource,
	tutors tutorFinder,
	notifications notificationWriter,
	metrics *MetricsService,
	cfg MatchingConfig,
	logger *zap.Logger,
) *MatchingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMatchingConcurrency
	}
	return &MatchingService{
		requests:      requests,
		applications:  applications,
		ratings:       ratings,
		tutors:        tutors,
		notifications: notifications,
		metrics:       metrics,
		tracer:        otel.Tracer(tracerName),
		logger:        logger,
		cfg:           cfg,
	}
}

// RankApplicants scores every PENDING application of the request, persists each score
// and returns them best first. Equal scores keep application age order.
func (s *MatchingService) RankApplicants(ctx context.Context, requestID string) ([]models.RankedApplication, error) {
	return s.rank(ctx, requestID, "matching.rank_applicants")
}

// RefreshRanking re-ranks the request from a background job, discarding the result.
func (s *MatchingService) RefreshRanking(ctx context.Context, requestID string) error {
	_, err := s.rank(ctx, requestID, "matching.refresh_ranking")
	return err
}

func (s *MatchingService) rank(ctx context.Context, requestID, spanName string) (ranked []models.RankedApplication, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("tutoring_request.id", requestID),
	))
	defer func() {
		outcome := RankOutcomeSuccess
		switch {
		case appErrors.IsCode(err, appErrors.ErrNotFound.Code):
			outcome = RankOutcomeNotFound
		case err != nil:
			outcome = RankOutcomeError
			span.RecordError(err)
			span.SetStatus(codes.Error, "ranking failed")
		}
		s.metrics.ObserveRanking(outcome, len(ranked), time.Since(start))
		span.End()
	}()

	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	queryStart := time.Now()
	pending, err := s.applications.ListPendingWithProfiles(ctx, req.ID)
	s.metrics.ObserveDBQuery("matching_pending_applications", time.Since(queryStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending applications")
	}
	span.SetAttributes(attribute.Int("matching.applicants", len(pending)))
	if len(pending) == 0 {
		return []models.RankedApplication{}, nil
	}

	input := NewMatchRequest(req)
	p := pool.NewWithResults[models.RankedApplication]().
		WithContext(ctx).
		WithMaxGoroutines(s.cfg.MaxConcurrency).
		WithCancelOnError().
		WithFirstError()
	for _, app := range pending {
		p.Go(func(ctx context.Context) (models.RankedApplication, error) {
			return s.scoreApplication(ctx, input, app)
		})
	}
	ranked, err = p.Wait()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to score applications")
	}

	sortRanked(ranked)

	logger.WithContext(ctx, s.logger).Info("applicants ranked",
		zap.String("tutoring_request_id", req.ID),
		zap.Int("applicants", len(ranked)),
		zap.Duration("duration", time.Since(start)),
	)
	return ranked, nil
}

func (s *MatchingService) scoreApplication(ctx context.Context, input MatchRequest, app models.ApplicationWithProfile) (models.RankedApplication, error) {
	ctx, span := s.tracer.Start(ctx, "matching.score_application", trace.WithAttributes(
		attribute.String("application.id", app.ID),
		attribute.String("tutor_profile.id", app.TutorProfile.ID),
	))
	defer span.End()

	rating, err := s.ratings.CurrentAverageRating(ctx, app.TutorProfile.UserID)
	if err != nil {
		span.RecordError(err)
		return models.RankedApplication{}, fmt.Errorf("rating for application %s: %w", app.ID, err)
	}

	breakdown := ComputeMatchBreakdown(input, NewMatchTutor(&app.TutorProfile), rating)
	if err := s.applications.UpdateMatchScore(ctx, app.ID, breakdown.Total); err != nil {
		span.RecordError(err)
		return models.RankedApplication{}, fmt.Errorf("persist score for application %s: %w", app.ID, err)
	}
	span.SetAttributes(attribute.Float64("matching.score", breakdown.Total))

	score := breakdown.Total
	app.MatchScore = &score
	return models.RankedApplication{
		ApplicationWithProfile: app,
		AverageRating:          rating,
		Breakdown:              breakdown,
	}, nil
}

// sortRanked orders by score descending, then creation time, then id.
func sortRanked(ranked []models.RankedApplication) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if sa, sb := a.ScoreOrZero(), b.ScoreOrZero(); sa != sb {
			return sa > sb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// NotifyMatchingTutors tells every tutor listing the request subject as an expertise area
// that the request was posted. It returns the number of notifications written.
func (s *MatchingService) NotifyMatchingTutors(ctx context.Context, requestID string) (int, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return 0, err
	}

	profiles, err := s.tutors.ListTutorsByExpertise(ctx, req.CourseSubject)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find matching tutors")
	}
	if len(profiles) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	content := fmt.Sprintf("A new tutoring request for \"%s\" has been posted: %s", req.CourseSubject, req.TopicDescription)
	notifications := make([]models.Notification, 0, len(profiles))
	for _, profile := range profiles {
		notifications = append(notifications, models.Notification{
			ID:        uuid.NewString(),
			UserID:    profile.UserID,
			Type:      models.NotificationNewMatchingRequest,
			Content:   content,
			CreatedAt: now,
		})
	}
	if err := s.notifications.CreateMany(ctx, notifications); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notifications")
	}
	s.metrics.RecordNotifications(models.NotificationNewMatchingRequest, len(notifications))

	logger.WithContext(ctx, s.logger).Info("matching tutors notified",
		zap.String("tutoring_request_id", req.ID),
		zap.Int("notified", len(notifications)),
	)
	return len(notifications), nil
}

func (s *MatchingService) loadRequest(ctx context.Context, requestID string) (*models.TutoringRequest, error) {
	return findTutoringRequest(ctx, s.requests, requestID)
}

func findTutoringRequest(ctx context.Context, requests requestReader, requestID string) (*models.TutoringRequest, error) {
	if requestID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request id is required")
	}
	req, err := requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutoring request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutoring request")
	}
	if req == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "tutoring request not found")
	}
	return req, nil
}
