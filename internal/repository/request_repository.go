package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutorlink-api/internal/models"
)

// TutoringRequestRepository reads tutoring requests.
type TutoringRequestRepository struct {
	db *sqlx.DB
}

// NewTutoringRequestRepository constructs the repository.
func NewTutoringRequestRepository(db *sqlx.DB) *TutoringRequestRepository {
	return &TutoringRequestRepository{db: db}
}

// FindByID returns a tutoring request or sql.ErrNoRows when it does not exist.
func (r *TutoringRequestRepository) FindByID(ctx context.Context, id string) (*models.TutoringRequest, error) {
	const query = `SELECT id, tutee_id, course_subject, topic_description, availability_slots, meeting_format, budget_min, budget_max, status, created_at, updated_at FROM tutoring_requests WHERE id = $1 LIMIT 1`
	var req models.TutoringRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find tutoring request: %w", err)
	}
	return &req, nil
}
