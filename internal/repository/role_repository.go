package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tasktracker/internal/model"
)

type RoleRepository struct {
	db *gorm.DB
}

type RoleRepositoryInterface interface {
	FindOrCreate(ctx context.Context, name model.RoleName) (*model.Role, error)
}

var _ RoleRepositoryInterface = (*RoleRepository)(nil)

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// FindOrCreate returns the role called name, inserting it on first use.
// Concurrent first uses converge on the row that won the unique index.
func (r *RoleRepository) FindOrCreate(ctx context.Context, name model.RoleName) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role = model.Role{Name: name}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&role).Error
	if err != nil {
		return nil, err
	}

	var stored model.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}
