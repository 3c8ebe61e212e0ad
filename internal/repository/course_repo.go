package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// CourseRepository defines persistence operations for courses. Student
// counters move only through the guarded atomic increment/decrement so
// concurrent approvals cannot lose updates or overshoot capacity.
type CourseRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
	IncrementStudents(ctx context.Context, id uint) error
	DecrementStudents(ctx context.Context, id uint) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context, activeOnly bool) ([]models.Course, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var courses []models.Course
	if err := query.Order("name ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseRepository) IncrementStudents(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Course{}).
		Where("id = ? AND (max_students = 0 OR current_students < max_students)", id).
		UpdateColumn("current_students", gorm.Expr("current_students + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrNoCapacity
	}
	return nil
}

func (r *courseRepository) DecrementStudents(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Course{}).
		Where("id = ? AND current_students > 0", id).
		UpdateColumn("current_students", gorm.Expr("current_students - 1")).Error
}
