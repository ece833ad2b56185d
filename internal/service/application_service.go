package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorlink-api/internal/dto"
	"github.com/noah-isme/tutorlink-api/internal/models"
	"github.com/noah-isme/tutorlink-api/internal/repository"
	appErrors "github.com/noah-isme/tutorlink-api/pkg/errors"
	"github.com/noah-isme/tutorlink-api/pkg/logger"
)

type applicationAcceptor interface {
	FindByID(ctx context.Context, id string) (*models.ApplicationWithProfile, error)
	Accept(ctx context.Context, params repository.AcceptParams) error
}

// ApplicationService manages decisions on tutor applications.
type ApplicationService struct {
	applications applicationAcceptor
	requests     requestReader
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(applications applicationAcceptor, requests requestReader, metrics *MetricsService, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{applications: applications, requests: requests, metrics: metrics, logger: logger}
}

// AcceptApplication accepts one pending application on behalf of the request owner. All
// other pending applications for the request are rejected and the tutor is notified.
func (s *ApplicationService) AcceptApplication(ctx context.Context, applicationID string, claims *models.JWTClaims) (*dto.AcceptApplicationResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if applicationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "application id is required")
	}

	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	req, err := findTutoringRequest(ctx, s.requests, app.RequestID)
	if err != nil {
		return nil, err
	}
	if req.TuteeID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the request owner can accept applications")
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("application is already %s", app.Status))
	}

	now := time.Now().UTC()
	params := repository.AcceptParams{
		ApplicationID: app.ID,
		RequestID:     req.ID,
		DecidedAt:     now,
		Notification: models.Notification{
			ID:        uuid.NewString(),
			UserID:    app.TutorProfile.UserID,
			Type:      models.NotificationApplicationAccepted,
			Content:   fmt.Sprintf("Your application for \"%s\" has been accepted!", req.CourseSubject),
			CreatedAt: now,
		},
	}
	if err := s.applications.Accept(ctx, params); err != nil {
		if errors.Is(err, repository.ErrApplicationNotPending) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application is no longer pending")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to accept application")
	}
	s.metrics.RecordNotifications(models.NotificationApplicationAccepted, 1)

	logger.WithContext(ctx, s.logger).Info("application accepted",
		zap.String("application_id", app.ID),
		zap.String("tutoring_request_id", req.ID),
		zap.String("accepted_by", claims.UserID),
	)
	return &dto.AcceptApplicationResponse{
		ApplicationID: app.ID,
		RequestID:     req.ID,
		Status:        models.ApplicationStatusAccepted,
		RequestStatus: models.RequestStatusInProgress,
	}, nil
}
