package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// ApplicationFilter narrows application listings.
type ApplicationFilter struct {
	UserID   uint
	CourseID uint
	Status   models.ApplicationStatus
	Page     int
	PageSize int
}

var nonTerminalApplicationStatuses = []models.ApplicationStatus{
	models.ApplicationStatusPendingPayment,
	models.ApplicationStatusPaymentSubmitted,
	models.ApplicationStatusPaymentVerified,
}

// ApplicationRepository defines persistence operations for enrollment
// applications.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id uint) (models.EnrollmentApplication, error)
	List(ctx context.Context, filter ApplicationFilter) ([]models.EnrollmentApplication, int64, error)
	Create(ctx context.Context, application *models.EnrollmentApplication) error
	Update(ctx context.Context, application *models.EnrollmentApplication) error
	HasNonTerminal(ctx context.Context, userID, courseID uint) (bool, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository instantiates a GORM-backed repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (models.EnrollmentApplication, error) {
	var application models.EnrollmentApplication
	if err := r.db.WithContext(ctx).Preload("Course").First(&application, id).Error; err != nil {
		return models.EnrollmentApplication{}, err
	}
	return application, nil
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]models.EnrollmentApplication, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.EnrollmentApplication{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CourseID != 0 {
		query = query.Where("course_id = ?", filter.CourseID)
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

	var applications []models.EnrollmentApplication
	if err := query.Preload("Course").Order("created_at DESC").Find(&applications).Error; err != nil {
		return nil, 0, err
	}
	return applications, total, nil
}

func (r *applicationRepository) Create(ctx context.Context, application *models.EnrollmentApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *applicationRepository) Update(ctx context.Context, application *models.EnrollmentApplication) error {
	return r.db.WithContext(ctx).Save(application).Error
}

func (r *applicationRepository) HasNonTerminal(ctx context.Context, userID, courseID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EnrollmentApplication{}).
		Where("user_id = ? AND course_id = ? AND status IN ?", userID, courseID, nonTerminalApplicationStatuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
