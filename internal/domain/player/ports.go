package player

import "context"

// UserRepository persists users with optimistic concurrency: Update fails
// with a VersionConflictError when the stored version moved under the caller.
type UserRepository interface {
	FindByID(ctx context.Context, userID int) (*User, error)
	Add(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

// NotificationRepository appends and lists user notifications
type NotificationRepository interface {
	Append(ctx context.Context, notification *Notification) error
	ListByUser(ctx context.Context, userID int, limit int) ([]*Notification, error)
}
