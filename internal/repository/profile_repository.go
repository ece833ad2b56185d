package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/tutorlink-api/internal/models"
)

// ProfileRepository reads tutor profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// ListTutorsByExpertise returns profiles listing the subject as an expertise area whose
// owner can tutor.
func (r *ProfileRepository) ListTutorsByExpertise(ctx context.Context, subject string) ([]models.Profile, error) {
	const query = `
SELECT p.id, p.user_id, p.display_name, p.self_reported_courses, p.areas_of_expertise, p.hourly_rate, p.availability, p.preferred_format, p.created_at
FROM profiles p
JOIN users u ON u.id = p.user_id
WHERE $1 = ANY(p.areas_of_expertise) AND u.role = ANY($2)
ORDER BY p.created_at ASC`

	roles := []string{string(models.RoleTutor), string(models.RoleBoth)}
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, subject, pq.Array(roles)); err != nil {
		return nil, fmt.Errorf("list tutors by expertise: %w", err)
	}
	return profiles, nil
}
