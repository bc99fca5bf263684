package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasktracker/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

// TaskFilter narrows a member's task listing. Order must come from TaskOrder.
type TaskFilter struct {
	Status   model.TaskStatus
	Priority model.Priority
	Order    string
	Page     PageQuery
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListVisible(ctx context.Context, memberID uuid.UUID, filter TaskFilter) ([]model.Task, int64, error)
	Update(ctx context.Context, task *model.Task, writeStatus bool) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

var taskSortColumns = map[string]string{
	"created_at": "tasks.created_at",
	"updated_at": "tasks.updated_at",
	"due_date":   "tasks.due_date",
	"priority":   "tasks.priority",
	"title":      "tasks.title",
	"status":     "tasks.status",
}

// TaskOrder turns a sort key such as "due_date" or "-created_at" into an ORDER BY
// clause. An empty key sorts by creation time. Unknown keys report false.
func TaskOrder(sort string) (string, bool) {
	if sort == "" {
		return "tasks.created_at ASC", true
	}
	direction := "ASC"
	if strings.HasPrefix(sort, "-") {
		direction = "DESC"
		sort = strings.TrimPrefix(sort, "-")
	}
	column, ok := taskSortColumns[sort]
	if !ok {
		return "", false
	}
	return column + " " + direction + " NULLS LAST", true
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit("Creator", "Assignments").Create(task).Error
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// GetDetail retrieves a task with its creator and assignees
func (r *TaskRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_assignments.assigned_at")
		}).
		Preload("Assignments.Member").
		First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// ListVisible retrieves the tasks a member created or is assigned to, with the
// total match count before pagination
func (r *TaskRepository) ListVisible(ctx context.Context, memberID uuid.UUID, filter TaskFilter) ([]model.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("tasks.created_by_id = ? OR EXISTS (SELECT 1 FROM task_assignments ta WHERE ta.task_id = tasks.id AND ta.member_id = ?)",
			memberID, memberID)
	if filter.Status != "" {
		query = query.Where("tasks.status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("tasks.priority = ?", filter.Priority)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := filter.Order
	if order == "" {
		order, _ = TaskOrder("")
	}

	var tasks []model.Task
	err := query.
		Preload("Creator").
		Preload("Assignments.Member").
		Order(order).
		Offset(filter.Page.Offset).
		Limit(filter.Page.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Update writes the editable columns of a task. Status is written only when
// writeStatus is set, and then never over a row that is already completed.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task, writeStatus bool) error {
	changes := map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"priority":    task.Priority,
		"due_date":    task.DueDate,
	}
	query := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", task.ID)
	if writeStatus {
		changes["status"] = task.Status
		query = query.Where("status <> ?", model.TaskCompleted)
	}

	result := query.Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if !writeStatus {
		return ErrTaskNotFound
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", task.ID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return model.ErrTaskClosed
}

// SetStatus overwrites only the status column
func (r *TaskRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteCascade removes a task with its assignments, help requests and their answers
func (r *TaskRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := tx.Model(&model.HelpRequest{}).Select("id").Where("task_id = ?", id)
		if err := tx.Where("help_request_id IN (?)", requests).Delete(&model.HelpAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.HelpRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.TaskAssignment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}
