package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// Sequence names used across the portal.
const (
	SequenceMemberNumber      = "member"
	SequenceApplicationNumber = "application"
)

// SequenceRepository allocates monotonically increasing per-year counters.
// Next must be called inside the transaction that consumes the number so an
// aborted caller does not burn values visibly.
type SequenceRepository interface {
	Next(ctx context.Context, name string, year int) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository instantiates a GORM-backed repository.
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, name string, year int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Sequence{}).
		Where("name = ? AND year = ?", name, year).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		seq := models.Sequence{Name: name, Year: year, Value: 1}
		created := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seq)
		if created.Error != nil {
			return 0, created.Error
		}
		if created.RowsAffected > 0 {
			return 1, nil
		}
		// Lost the insert race; bump the row the winner created.
		if err := r.db.WithContext(ctx).Model(&models.Sequence{}).
			Where("name = ? AND year = ?", name, year).
			UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
			return 0, err
		}
	}

	var seq models.Sequence
	if err := r.db.WithContext(ctx).
		Where("name = ? AND year = ?", name, year).
		First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}
