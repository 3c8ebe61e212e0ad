package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// FeeFilter narrows monthly fee listings.
type FeeFilter struct {
	MemberProfileID uint
	EnrollmentID    uint
	Period          string
	Status          models.FeeStatus
	Page            int
	PageSize        int
}

// MonthlyFeeRepository defines persistence operations for monthly fees.
type MonthlyFeeRepository interface {
	GetByID(ctx context.Context, id uint) (models.MonthlyFee, error)
	List(ctx context.Context, filter FeeFilter) ([]models.MonthlyFee, int64, error)
	Create(ctx context.Context, fee *models.MonthlyFee) error
	Update(ctx context.Context, fee *models.MonthlyFee) error
	ExistsForPeriod(ctx context.Context, enrollmentID uint, period string) (bool, error)
}

type monthlyFeeRepository struct {
	db *gorm.DB
}

// NewMonthlyFeeRepository instantiates a GORM-backed repository.
func NewMonthlyFeeRepository(db *gorm.DB) MonthlyFeeRepository {
	return &monthlyFeeRepository{db: db}
}

func (r *monthlyFeeRepository) GetByID(ctx context.Context, id uint) (models.MonthlyFee, error) {
	var fee models.MonthlyFee
	if err := r.db.WithContext(ctx).First(&fee, id).Error; err != nil {
		return models.MonthlyFee{}, err
	}
	return fee, nil
}

func (r *monthlyFeeRepository) List(ctx context.Context, filter FeeFilter) ([]models.MonthlyFee, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MonthlyFee{})

	if filter.MemberProfileID != 0 {
		query = query.Where("member_profile_id = ?", filter.MemberProfileID)
	}
	if filter.EnrollmentID != 0 {
		query = query.Where("enrollment_id = ?", filter.EnrollmentID)
	}
	if filter.Period != "" {
		query = query.Where("period = ?", filter.Period)
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

	var fees []models.MonthlyFee
	if err := query.Order("period DESC, id ASC").Find(&fees).Error; err != nil {
		return nil, 0, err
	}
	return fees, total, nil
}

func (r *monthlyFeeRepository) Create(ctx context.Context, fee *models.MonthlyFee) error {
	return r.db.WithContext(ctx).Create(fee).Error
}

func (r *monthlyFeeRepository) Update(ctx context.Context, fee *models.MonthlyFee) error {
	return r.db.WithContext(ctx).Save(fee).Error
}

func (r *monthlyFeeRepository) ExistsForPeriod(ctx context.Context, enrollmentID uint, period string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MonthlyFee{}).
		Where("enrollment_id = ? AND period = ?", enrollmentID, period).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
