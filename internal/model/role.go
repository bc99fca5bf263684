package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleName is the closed set of access tiers a member can hold.
type RoleName string

const (
	RoleAdmin   RoleName = "admin"   // full control
	RoleManager RoleName = "manager" // task assignment and member listing
	RoleUser    RoleName = "user"    // self-scoped
)

// Valid reports whether r is one of the known role names.
func (r RoleName) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      RoleName  `gorm:"type:varchar(32);uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
