package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// MemberProfileFilter describes pagination & search options for profiles.
type MemberProfileFilter struct {
	Search   string
	BeltRank string
	Page     int
	PageSize int
}

// MemberProfileRepository defines persistence operations for member profiles.
type MemberProfileRepository interface {
	GetByID(ctx context.Context, id uint) (models.MemberProfile, error)
	GetByUserID(ctx context.Context, userID uint) (models.MemberProfile, error)
	List(ctx context.Context, filter MemberProfileFilter) ([]models.MemberProfile, int64, error)
	Create(ctx context.Context, profile *models.MemberProfile) error
	Update(ctx context.Context, profile *models.MemberProfile) error
}

type memberProfileRepository struct {
	db *gorm.DB
}

// NewMemberProfileRepository instantiates a GORM-backed repository.
func NewMemberProfileRepository(db *gorm.DB) MemberProfileRepository {
	return &memberProfileRepository{db: db}
}

func (r *memberProfileRepository) GetByID(ctx context.Context, id uint) (models.MemberProfile, error) {
	var profile models.MemberProfile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return models.MemberProfile{}, err
	}
	return profile, nil
}

func (r *memberProfileRepository) GetByUserID(ctx context.Context, userID uint) (models.MemberProfile, error) {
	var profile models.MemberProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.MemberProfile{}, err
	}
	return profile, nil
}

func (r *memberProfileRepository) List(ctx context.Context, filter MemberProfileFilter) ([]models.MemberProfile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MemberProfile{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(member_number) LIKE ?", pattern, pattern)
	}
	if filter.BeltRank != "" {
		query = query.Where("belt_rank = ?", filter.BeltRank)
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

	var profiles []models.MemberProfile
	if err := query.Order("member_number ASC").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *memberProfileRepository) Create(ctx context.Context, profile *models.MemberProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *memberProfileRepository) Update(ctx context.Context, profile *models.MemberProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
