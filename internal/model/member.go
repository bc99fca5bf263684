package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Member struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	PasswordDigest string    `gorm:"not null"`
	Name           string    `gorm:"not null"`
	RoleID         uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Role Role `gorm:"foreignKey:RoleID"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// HasRole reports whether the member's loaded role is one of names.
func (m *Member) HasRole(names ...RoleName) bool {
	for _, n := range names {
		if m.Role.Name == n {
			return true
		}
	}
	return false
}
