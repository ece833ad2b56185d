package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutorlink-api/internal/models"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateMany inserts the notifications in one statement. An empty slice is a no-op.
func (r *NotificationRepository) CreateMany(ctx context.Context, notifications []models.Notification) error {
	return insertNotifications(ctx, r.db, notifications)
}

func insertNotifications(ctx context.Context, exec sqlx.ExtContext, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	const query = `INSERT INTO notifications (id, user_id, type, content, is_read, created_at) VALUES (:id, :user_id, :type, :content, :is_read, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, notifications); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}
