package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

var (
	// ErrCompletionDerived is returned when a caller tries to write the completed
	// status directly. Only the all-assignees-done check may complete a task.
	ErrCompletionDerived = errors.New("status completed is set only when every assignee has completed")
	// ErrTaskClosed is returned for any status change on a completed task.
	ErrTaskClosed = errors.New("completed task cannot change status")
)

// CanTransitionTo checks a manual status write from s to next.
// pending and in_progress move freely between each other; completed is
// reachable only through Complete and is terminal.
func (s TaskStatus) CanTransitionTo(next TaskStatus) error {
	if s == next {
		return nil
	}
	if s == TaskCompleted {
		return ErrTaskClosed
	}
	if next == TaskCompleted {
		return ErrCompletionDerived
	}
	return nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title       string     `gorm:"not null"`
	Description *string
	Status      TaskStatus `gorm:"type:varchar(32);not null"`
	Priority    *Priority  `gorm:"type:varchar(32)"`
	DueDate     *time.Time `gorm:"type:date"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Creator     Member           `gorm:"foreignKey:CreatedByID"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether the due date falls strictly before the calendar day of now.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return dateOnly(*t.DueDate).Before(dateOnly(now))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
