package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tasktracker/internal/model"
)

type HelpRequestRepository struct {
	db *gorm.DB
}

// HelpRequestScope selects the side of the conversation to list.
// Exactly one of AdminID and RequesterID is expected to be set.
type HelpRequestScope struct {
	AdminID     uuid.UUID
	RequesterID uuid.UUID
}

type HelpRequestRepositoryInterface interface {
	Create(ctx context.Context, req *model.HelpRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.HelpRequest, error)
	List(ctx context.Context, scope HelpRequestScope) ([]model.HelpRequest, error)
	SaveAnswer(ctx context.Context, requestID, adminID uuid.UUID, text string) (*model.HelpAnswer, error)
}

var _ HelpRequestRepositoryInterface = (*HelpRequestRepository)(nil)

func NewHelpRequestRepository(db *gorm.DB) *HelpRequestRepository {
	return &HelpRequestRepository{db: db}
}

func (r *HelpRequestRepository) Create(ctx context.Context, req *model.HelpRequest) error {
	return r.db.WithContext(ctx).Omit("Requester", "Admin", "Answer").Create(req).Error
}

func (r *HelpRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.HelpRequest, error) {
	var req model.HelpRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Admin").
		Preload("Answer").
		First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHelpRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// List returns the scoped help requests newest first, with both parties and the answer loaded.
func (r *HelpRequestRepository) List(ctx context.Context, scope HelpRequestScope) ([]model.HelpRequest, error) {
	query := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Admin").
		Preload("Answer")
	if scope.AdminID != uuid.Nil {
		query = query.Where("admin_id = ?", scope.AdminID)
	} else {
		query = query.Where("requester_id = ?", scope.RequesterID)
	}

	var reqs []model.HelpRequest
	err := query.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

// SaveAnswer upserts the single answer of a help request and marks the request
// answered. Concurrent answers resolve last-write-wins on the unique
// help_request_id index.
func (r *HelpRequestRepository) SaveAnswer(ctx context.Context, requestID, adminID uuid.UUID, text string) (*model.HelpAnswer, error) {
	var stored model.HelpAnswer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		answer := model.HelpAnswer{
			HelpRequestID: requestID,
			AdminID:       adminID,
			Answer:        text,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "help_request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answer", "admin_id", "updated_at"}),
		}).Create(&answer).Error
		if err != nil {
			return err
		}

		result := tx.Model(&model.HelpRequest{}).
			Where("id = ?", requestID).
			Update("status", model.HelpRequestAnswered)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrHelpRequestNotFound
		}

		return tx.Where("help_request_id = ?", requestID).First(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}
