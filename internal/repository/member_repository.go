package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasktracker/internal/model"
)

type MemberRepository struct {
	db *gorm.DB
}

// MemberFilter narrows member listings.
type MemberFilter struct {
	Role model.RoleName
	Page PageQuery
}

type MemberRepositoryInterface interface {
	Create(ctx context.Context, member *model.Member) error
	FindByEmail(ctx context.Context, email string) (*model.Member, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
	FindAdmin(ctx context.Context, id uuid.UUID) (*model.Member, error)
	ListAdmins(ctx context.Context) ([]model.Member, error)
	List(ctx context.Context, filter MemberFilter) ([]model.Member, int64, error)
	Update(ctx context.Context, member *model.Member) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

var _ MemberRepositoryInterface = (*MemberRepository)(nil)

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(ctx context.Context, member *model.Member) error {
	return translateError(r.db.WithContext(ctx).Omit("Role").Create(member).Error)
}

func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", id).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindAdmin returns the member with id only if their current role is admin.
func (r *MemberRepository) FindAdmin(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Preload("Role").
		Joins("JOIN roles ON roles.id = members.role_id").
		Where("members.id = ? AND roles.name = ?", id, model.RoleAdmin).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) ListAdmins(ctx context.Context) ([]model.Member, error) {
	var admins []model.Member
	err := r.db.WithContext(ctx).
		Preload("Role").
		Joins("JOIN roles ON roles.id = members.role_id").
		Where("roles.name = ?", model.RoleAdmin).
		Order("members.name").
		Find(&admins).Error
	return admins, err
}

func (r *MemberRepository) List(ctx context.Context, filter MemberFilter) ([]model.Member, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Member{})
	if filter.Role != "" {
		query = query.
			Joins("JOIN roles ON roles.id = members.role_id").
			Where("roles.name = ?", filter.Role)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []model.Member
	err := query.
		Preload("Role").
		Order("members.created_at").
		Offset(filter.Page.Offset).
		Limit(filter.Page.Limit).
		Find(&members).Error
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// Update writes the mutable profile columns: email, name and password digest.
func (r *MemberRepository) Update(ctx context.Context, member *model.Member) error {
	result := r.db.WithContext(ctx).Model(&model.Member{ID: member.ID}).Updates(map[string]interface{}{
		"email":           member.Email,
		"name":            member.Name,
		"password_digest": member.PasswordDigest,
	})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// DeleteCascade removes a member together with everything that hangs off them:
// tasks they created (and those tasks' assignments and help requests), their own
// assignments, help requests they raised or were addressed to, and answers they wrote.
func (r *MemberRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownedTasks := tx.Model(&model.Task{}).Select("id").Where("created_by_id = ?", id)
		linkedRequests := tx.Model(&model.HelpRequest{}).Select("id").
			Where("requester_id = ? OR admin_id = ? OR task_id IN (?)", id, id, ownedTasks)

		if err := tx.Where("admin_id = ? OR help_request_id IN (?)", id, linkedRequests).
			Delete(&model.HelpAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("requester_id = ? OR admin_id = ? OR task_id IN (?)", id, id, ownedTasks).
			Delete(&model.HelpRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ? OR task_id IN (?)", id, ownedTasks).
			Delete(&model.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("created_by_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&model.Member{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrMemberNotFound
		}
		return nil
	})
}
