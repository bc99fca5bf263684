package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasktracker/internal/model"
)

type AssignmentRepository struct {
	db *gorm.DB
}

type AssignmentRepositoryInterface interface {
	Assign(ctx context.Context, taskID, memberID uuid.UUID, at time.Time) (bool, error)
	Find(ctx context.Context, taskID, memberID uuid.UUID) (*model.TaskAssignment, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.TaskAssignment, error)
	Delete(ctx context.Context, taskID, memberID uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time, comment *string) error
	CountPending(ctx context.Context, taskID uuid.UUID) (int64, error)
}

var _ AssignmentRepositoryInterface = (*AssignmentRepository)(nil)

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Assign inserts the (task, member) pair unless it already exists. The unique
// index settles concurrent calls: exactly one insert lands, the rest are no-ops.
// The bool reports whether this call created the row.
func (r *AssignmentRepository) Assign(ctx context.Context, taskID, memberID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		"INSERT INTO task_assignments (id, task_id, member_id, assigned_at, created_at, updated_at) "+
			"VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (task_id, member_id) DO NOTHING",
		uuid.New(), taskID, memberID, at, at, at,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *AssignmentRepository) Find(ctx context.Context, taskID, memberID uuid.UUID) (*model.TaskAssignment, error) {
	var assignment model.TaskAssignment
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND member_id = ?", taskID, memberID).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.TaskAssignment, error) {
	var assignments []model.TaskAssignment
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("task_id = ?", taskID).
		Order("assigned_at").
		Find(&assignments).Error
	return assignments, err
}

func (r *AssignmentRepository) Delete(ctx context.Context, taskID, memberID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("task_id = ? AND member_id = ?", taskID, memberID).
		Delete(&model.TaskAssignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// MarkCompleted stamps the assignment as done. Repeated calls overwrite both fields.
func (r *AssignmentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time, comment *string) error {
	result := r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"completed_at":       at,
			"completion_comment": comment,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// CountPending counts assignments on the task that are not completed yet.
func (r *AssignmentRepository) CountPending(ctx context.Context, taskID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where("task_id = ? AND completed_at IS NULL", taskID).
		Count(&n).Error
	return n, err
}
