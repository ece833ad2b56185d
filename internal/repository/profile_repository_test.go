package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTutorsByExpertise(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "display_name", "self_reported_courses", "areas_of_expertise", "hourly_rate", "availability", "preferred_format", "created_at"}).
		AddRow("prof-1", "user-1", "Ada", "{}", "{calculus}", 25.0, []byte(`[]`), "VIRTUAL", now)

	mock.ExpectQuery(`ANY\(p.areas_of_expertise\) AND u.role = ANY\(\$2\)`).
		WithArgs("calculus", pq.Array([]string{"TUTOR", "BOTH"})).
		WillReturnRows(rows)

	profiles, err := repo.ListTutorsByExpertise(context.Background(), "calculus")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "user-1", profiles[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
