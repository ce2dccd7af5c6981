package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/stellardrift/stellardrift-go/internal/domain/player"
)

// GormNotificationRepository implements player.NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a notification repository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Append stores a notification
func (r *GormNotificationRepository) Append(ctx context.Context, n *player.Notification) error {
	model := &NotificationModel{
		UserID:    n.UserID,
		Kind:      n.Kind,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	n.ID = model.ID
	return nil
}

// ListByUser returns the newest notifications for a user
func (r *GormNotificationRepository) ListByUser(ctx context.Context, userID int, limit int) ([]*player.Notification, error) {
	var models []NotificationModel
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", userID, err)
	}
	notifications := make([]*player.Notification, 0, len(models))
	for i := range models {
		notifications = append(notifications, models[i].ToDomain())
	}
	return notifications, nil
}
