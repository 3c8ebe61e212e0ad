package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// RegistrationFilter narrows program registration listings.
type RegistrationFilter struct {
	UserID    uint
	ProgramID uint
	Status    models.RegistrationStatus
	Page      int
	PageSize  int
}

var nonTerminalRegistrationStatuses = []models.RegistrationStatus{
	models.RegistrationStatusPendingPayment,
}

// RegistrationRepository defines persistence operations for program
// registrations.
type RegistrationRepository interface {
	GetByID(ctx context.Context, id uint) (models.ProgramRegistration, error)
	List(ctx context.Context, filter RegistrationFilter) ([]models.ProgramRegistration, int64, error)
	Create(ctx context.Context, registration *models.ProgramRegistration) error
	Update(ctx context.Context, registration *models.ProgramRegistration) error
	Delete(ctx context.Context, id uint) error
	HasNonTerminal(ctx context.Context, userID, programID uint) (bool, error)
}

type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository instantiates a GORM-backed repository.
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) GetByID(ctx context.Context, id uint) (models.ProgramRegistration, error) {
	var registration models.ProgramRegistration
	if err := r.db.WithContext(ctx).Preload("Program").First(&registration, id).Error; err != nil {
		return models.ProgramRegistration{}, err
	}
	return registration, nil
}

func (r *registrationRepository) List(ctx context.Context, filter RegistrationFilter) ([]models.ProgramRegistration, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProgramRegistration{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.ProgramID != 0 {
		query = query.Where("program_id = ?", filter.ProgramID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var registrations []models.ProgramRegistration
	if err := query.Preload("Program").Order("created_at DESC").Find(&registrations).Error; err != nil {
		return nil, 0, err
	}
	return registrations, total, nil
}

func (r *registrationRepository) Create(ctx context.Context, registration *models.ProgramRegistration) error {
	return r.db.WithContext(ctx).Create(registration).Error
}

func (r *registrationRepository) Update(ctx context.Context, registration *models.ProgramRegistration) error {
	return r.db.WithContext(ctx).Save(registration).Error
}

func (r *registrationRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ProgramRegistration{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepository) HasNonTerminal(ctx context.Context, userID, programID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProgramRegistration{}).
		Where("user_id = ? AND program_id = ? AND status IN ?", userID, programID, nonTerminalRegistrationStatuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
