package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// GormTaskRepository implements scheduler.TaskRepository. Claiming relies on
// a conditional UPDATE per row: the status predicate makes the PENDING ->
// RUNNING flip atomic, so two pollers can never both win the same task.
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a task repository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// Add inserts a new task
func (r *GormTaskRepository) Add(ctx context.Context, task *scheduler.Task) error {
	if err := r.db.WithContext(ctx).Create(taskToModel(task)).Error; err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Update writes a task's state back
func (r *GormTaskRepository) Update(ctx context.Context, task *scheduler.Task) error {
	result := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"status":     string(task.Status),
			"run_at":     task.RunAt,
			"attempts":   task.Attempts,
			"last_error": task.LastError,
			"claimed_at": task.ClaimedAt,
			"updated_at": task.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update task %s: %w", task.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("task", task.ID)
	}
	return nil
}

// FindByID loads a task
func (r *GormTaskRepository) FindByID(ctx context.Context, taskID string) (*scheduler.Task, error) {
	var model TaskModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("task", taskID)
		}
		return nil, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}
	return model.ToDomain(), nil
}

// ClaimDue flips up to limit due PENDING tasks to RUNNING and returns them.
// Candidates are read first, then each is claimed with a conditional update;
// rows another poller won in between simply drop out of the result.
func (r *GormTaskRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*scheduler.Task, error) {
	var candidates []TaskModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND run_at <= ?", string(scheduler.TaskStatusPending), now).
		Order("run_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}

	claimed := make([]*scheduler.Task, 0, len(candidates))
	for i := range candidates {
		result := r.db.WithContext(ctx).
			Model(&TaskModel{}).
			Where("id = ? AND status = ?", candidates[i].ID, string(scheduler.TaskStatusPending)).
			Updates(map[string]interface{}{
				"status":     string(scheduler.TaskStatusRunning),
				"claimed_at": now,
				"updated_at": now,
			})
		if result.Error != nil {
			return claimed, fmt.Errorf("failed to claim task %s: %w", candidates[i].ID, result.Error)
		}
		if result.RowsAffected == 0 {
			continue
		}
		task := candidates[i].ToDomain()
		task.Status = scheduler.TaskStatusRunning
		t := now
		task.ClaimedAt = &t
		claimed = append(claimed, task)
	}
	return claimed, nil
}

// CountPending counts PENDING tasks of one kind
func (r *GormTaskRepository) CountPending(ctx context.Context, kind scheduler.Kind) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("status = ? AND kind = ?", string(scheduler.TaskStatusPending), string(kind)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending %s tasks: %w", kind, err)
	}
	return int(count), nil
}

// ReleaseStale returns RUNNING tasks claimed before the cutoff to PENDING
func (r *GormTaskRepository) ReleaseStale(ctx context.Context, cutoff time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("status = ? AND claimed_at < ?", string(scheduler.TaskStatusRunning), cutoff).
		Updates(map[string]interface{}{
			"status":     string(scheduler.TaskStatusPending),
			"claimed_at": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to release stale tasks: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}
