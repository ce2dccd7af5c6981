package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stellardrift/stellardrift-go/internal/domain/player"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// GormUserRepository implements player.UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID loads a user
func (r *GormUserRepository) FindByID(ctx context.Context, userID int) (*player.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("user", fmt.Sprint(userID))
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return model.ToDomain(), nil
}

// Add inserts a new user
func (r *GormUserRepository) Add(ctx context.Context, user *player.User) error {
	model := userToModel(user)
	model.Version = 1
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID = model.ID
	user.Version = model.Version
	return nil
}

// Update writes the user back, guarded by an optimistic version check
func (r *GormUserRepository) Update(ctx context.Context, user *player.User) error {
	model := userToModel(user)
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ? AND version = ?", user.ID, user.Version).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"credits":     model.Credits,
			"dark_matter": model.DarkMatter,
			"xp":          model.XP,
			"level":       model.Level,
			"version":     user.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewVersionConflictError("user", fmt.Sprint(user.ID))
	}
	user.Version++
	return nil
}
