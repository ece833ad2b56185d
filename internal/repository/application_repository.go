package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutorlink-api/internal/models"
)

// ErrApplicationNotPending is returned by Accept when the application was already decided.
var ErrApplicationNotPending = errors.New("application is not pending")

const applicationWithProfileColumns = `
	a.id,
	a.request_id,
	a.tutor_profile_id,
	a.match_score,
	a.status,
	a.created_at,
	p.id AS "tutor_profile.id",
	p.user_id AS "tutor_profile.user_id",
	p.display_name AS "tutor_profile.display_name",
	p.self_reported_courses AS "tutor_profile.self_reported_courses",
	p.areas_of_expertise AS "tutor_profile.areas_of_expertise",
	p.hourly_rate AS "tutor_profile.hourly_rate",
	p.availability AS "tutor_profile.availability",
	p.preferred_format AS "tutor_profile.preferred_format",
	p.created_at AS "tutor_profile.created_at"`

// TutorApplicationRepository persists tutor applications and their match scores.
type TutorApplicationRepository struct {
	db *sqlx.DB
}

// NewTutorApplicationRepository constructs the repository.
func NewTutorApplicationRepository(db *sqlx.DB) *TutorApplicationRepository {
	return &TutorApplicationRepository{db: db}
}

// ListPendingWithProfiles returns PENDING applications for a request joined with the tutor
// profile, oldest first.
func (r *TutorApplicationRepository) ListPendingWithProfiles(ctx context.Context, requestID string) ([]models.ApplicationWithProfile, error) {
	query := `SELECT` + applicationWithProfileColumns + `
FROM tutor_applications a
JOIN profiles p ON p.id = a.tutor_profile_id
WHERE a.request_id = $1 AND a.status = $2
ORDER BY a.created_at ASC, a.id ASC`

	var apps []models.ApplicationWithProfile
	if err := r.db.SelectContext(ctx, &apps, query, requestID, models.ApplicationStatusPending); err != nil {
		return nil, fmt.Errorf("list pending applications: %w", err)
	}
	return apps, nil
}

// FindByID returns an application joined with its tutor profile or sql.ErrNoRows.
func (r *TutorApplicationRepository) FindByID(ctx context.Context, id string) (*models.ApplicationWithProfile, error) {
	query := `SELECT` + applicationWithProfileColumns + `
FROM tutor_applications a
JOIN profiles p ON p.id = a.tutor_profile_id
WHERE a.id = $1
LIMIT 1`

	var app models.ApplicationWithProfile
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &app, nil
}

// UpdateMatchScore overwrites the stored score of one application.
func (r *TutorApplicationRepository) UpdateMatchScore(ctx context.Context, id string, score float64) error {
	const query = `UPDATE tutor_applications SET match_score = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, score); err != nil {
		return fmt.Errorf("update match score: %w", err)
	}
	return nil
}

// AcceptParams describes an acceptance decision.
type AcceptParams struct {
	ApplicationID string
	RequestID     string
	Notification  models.Notification
	DecidedAt     time.Time
}

// Accept marks the application ACCEPTED, moves the request IN_PROGRESS, rejects every
// other pending sibling and records the notification in a single transaction.
func (r *TutorApplicationRepository) Accept(ctx context.Context, params AcceptParams) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin accept transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const acceptQuery = `UPDATE tutor_applications SET status = $2 WHERE id = $1 AND status = $3`
	res, err := tx.ExecContext(ctx, acceptQuery, params.ApplicationID, models.ApplicationStatusAccepted, models.ApplicationStatusPending)
	if err != nil {
		return fmt.Errorf("accept application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("accept application rows: %w", err)
	}
	if affected == 0 {
		return ErrApplicationNotPending
	}

	const requestQuery = `UPDATE tutoring_requests SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, requestQuery, params.RequestID, models.RequestStatusInProgress, params.DecidedAt); err != nil {
		return fmt.Errorf("update request status: %w", err)
	}

	const rejectQuery = `UPDATE tutor_applications SET status = $3 WHERE request_id = $1 AND id <> $2 AND status = $4`
	if _, err = tx.ExecContext(ctx, rejectQuery, params.RequestID, params.ApplicationID, models.ApplicationStatusRejected, models.ApplicationStatusPending); err != nil {
		return fmt.Errorf("reject sibling applications: %w", err)
	}

	if err = insertNotifications(ctx, tx, []models.Notification{params.Notification}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit accept transaction: %w", err)
	}
	return nil
}
