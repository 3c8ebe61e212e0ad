package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// ProgramRepository defines persistence operations for programs. Participant
// counters share the guarded atomic increment pattern used for courses.
type ProgramRepository interface {
	List(ctx context.Context, openOnly bool) ([]models.Program, error)
	GetByID(ctx context.Context, id uint) (models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	IncrementParticipants(ctx context.Context, id uint) error
	DecrementParticipants(ctx context.Context, id uint) error
}

type programRepository struct {
	db *gorm.DB
}

// NewProgramRepository instantiates a GORM-backed repository.
func NewProgramRepository(db *gorm.DB) ProgramRepository {
	return &programRepository{db: db}
}

func (r *programRepository) List(ctx context.Context, openOnly bool) ([]models.Program, error) {
	query := r.db.WithContext(ctx)
	if openOnly {
		query = query.Where("open = ?", true)
	}

	var programs []models.Program
	if err := query.Order("starts_at ASC").Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *programRepository) GetByID(ctx context.Context, id uint) (models.Program, error) {
	var program models.Program
	if err := r.db.WithContext(ctx).First(&program, id).Error; err != nil {
		return models.Program{}, err
	}
	return program, nil
}

func (r *programRepository) Create(ctx context.Context, program *models.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepository) Update(ctx context.Context, program *models.Program) error {
	return r.db.WithContext(ctx).Save(program).Error
}

func (r *programRepository) IncrementParticipants(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Program{}).
		Where("id = ? AND (max_participants = 0 OR current_participants < max_participants)", id).
		UpdateColumn("current_participants", gorm.Expr("current_participants + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Program{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrNoCapacity
	}
	return nil
}

func (r *programRepository) DecrementParticipants(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Program{}).
		Where("id = ? AND current_participants > 0", id).
		UpdateColumn("current_participants", gorm.Expr("current_participants - 1")).Error
}
