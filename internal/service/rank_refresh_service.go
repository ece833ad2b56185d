package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorlink-api/internal/dto"
	appErrors "github.com/noah-isme/tutorlink-api/pkg/errors"
	"github.com/noah-isme/tutorlink-api/pkg/jobs"
	"github.com/noah-isme/tutorlink-api/pkg/logger"
)

// RankRefreshJobType identifies background re-rank jobs.
const RankRefreshJobType = "matching.rank_refresh"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type rankRefresher interface {
	RefreshRanking(ctx context.Context, requestID string) error
}

// RankRefreshService hands re-rank work to the background queue.
type RankRefreshService struct {
	requests requestReader
	queue    jobDispatcher
	logger   *zap.Logger
}

// NewRankRefreshService constructs the service. A nil queue, including a nil *jobs.Queue,
// makes Enqueue report the refresh as unavailable.
func NewRankRefreshService(requests requestReader, queue jobDispatcher, logger *zap.Logger) *RankRefreshService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if q, ok := queue.(*jobs.Queue); ok && q == nil {
		queue = nil
	}
	return &RankRefreshService{requests: requests, queue: queue, logger: logger}
}

func rankRefreshKey(requestID string) string {
	return "rank:" + requestID
}

// Enqueue schedules a re-rank for an existing request. A request with a re-rank already
// waiting is reported as ALREADY_QUEUED instead of being queued twice.
func (s *RankRefreshService) Enqueue(ctx context.Context, requestID string) (*dto.RankRefreshResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "ranking refresh queue unavailable")
	}
	req, err := findTutoringRequest(ctx, s.requests, requestID)
	if err != nil {
		return nil, err
	}

	job := jobs.Job{
		ID:      uuid.NewString(),
		Key:     rankRefreshKey(req.ID),
		Type:    RankRefreshJobType,
		Payload: req.ID,
	}
	if err := s.queue.Enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrDuplicate) {
			return &dto.RankRefreshResponse{RequestID: req.ID, Status: dto.RefreshStatusAlreadyQueued}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to queue ranking refresh")
	}

	logger.WithContext(ctx, s.logger).Info("ranking refresh queued", zap.String("tutoring_request_id", req.ID), zap.String("job_id", job.ID))
	return &dto.RankRefreshResponse{RequestID: req.ID, JobID: job.ID, Status: dto.RefreshStatusQueued}, nil
}

// RankRefreshWorker bridges queue jobs to the ranking workflow.
type RankRefreshWorker struct {
	ranker  rankRefresher
	metrics *MetricsService
	logger  *zap.Logger
}

// NewRankRefreshWorker constructs a worker.
func NewRankRefreshWorker(ranker rankRefresher, metrics *MetricsService, logger *zap.Logger) *RankRefreshWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankRefreshWorker{ranker: ranker, metrics: metrics, logger: logger}
}

// Handle processes a queue job. A request deleted since enqueueing is dropped rather than
// retried.
func (w *RankRefreshWorker) Handle(ctx context.Context, job jobs.Job) error {
	requestID, ok := job.Payload.(string)
	if !ok || requestID == "" {
		w.metrics.RecordRefreshJob("invalid")
		w.logger.Error("ranking refresh job without request id", zap.String("job_id", job.ID))
		return nil
	}

	if err := w.ranker.RefreshRanking(ctx, requestID); err != nil {
		if appErrors.IsCode(err, appErrors.ErrNotFound.Code) {
			w.metrics.RecordRefreshJob("dropped")
			w.logger.Warn("ranking refresh for missing request", zap.String("job_id", job.ID), zap.String("tutoring_request_id", requestID))
			return nil
		}
		w.metrics.RecordRefreshJob("failed")
		return fmt.Errorf("refresh ranking %s: %w", requestID, err)
	}

	w.metrics.RecordRefreshJob("succeeded")
	return nil
}
