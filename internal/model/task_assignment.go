package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskAssignment binds one member to one task. (task_id, member_id) is unique.
type TaskAssignment struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_task_assignments_task_member"`
	MemberID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_task_assignments_task_member;index"`
	AssignedAt        time.Time `gorm:"not null"`
	CompletedAt       *time.Time
	CompletionComment *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Task   Task   `gorm:"foreignKey:TaskID"`
	Member Member `gorm:"foreignKey:MemberID"`
}

func (a *TaskAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now()
	}
	return nil
}

func (a *TaskAssignment) Completed() bool {
	return a.CompletedAt != nil
}
