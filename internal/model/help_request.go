package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HelpRequestStatus string

const (
	HelpRequestOpen     HelpRequestStatus = "open"
	HelpRequestAnswered HelpRequestStatus = "answered"
)

type HelpRequest struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	RequesterID uuid.UUID         `gorm:"type:uuid;not null;index"`
	AdminID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	TaskID      *uuid.UUID        `gorm:"type:uuid;index"`
	Question    string            `gorm:"type:text;not null"`
	Status      HelpRequestStatus `gorm:"type:varchar(32);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Requester Member      `gorm:"foreignKey:RequesterID"`
	Admin     Member      `gorm:"foreignKey:AdminID"`
	Answer    *HelpAnswer `gorm:"foreignKey:HelpRequestID"`
}

func (h *HelpRequest) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// HelpAnswer is the single answer to a help request.
type HelpAnswer struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	HelpRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	AdminID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Answer        string    `gorm:"type:text;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a *HelpAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
