package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	MemberProfileID uint
	CourseID        uint
	ActiveOnly      bool
}

// EnrollmentRepository defines persistence operations for course enrollments.
type EnrollmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.CourseEnrollment, error)
	List(ctx context.Context, filter EnrollmentFilter) ([]models.CourseEnrollment, error)
	Create(ctx context.Context, enrollment *models.CourseEnrollment) error
	Update(ctx context.Context, enrollment *models.CourseEnrollment) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates a GORM-backed repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (models.CourseEnrollment, error) {
	var enrollment models.CourseEnrollment
	if err := r.db.WithContext(ctx).Preload("Course").First(&enrollment, id).Error; err != nil {
		return models.CourseEnrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]models.CourseEnrollment, error) {
	query := r.db.WithContext(ctx)

	if filter.MemberProfileID != 0 {
		query = query.Where("member_profile_id = ?", filter.MemberProfileID)
	}
	if filter.CourseID != 0 {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var enrollments []models.CourseEnrollment
	if err := query.Order("id ASC").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.CourseEnrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *models.CourseEnrollment) error {
	return r.db.WithContext(ctx).Save(enrollment).Error
}
