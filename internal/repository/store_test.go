package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/database"
	"github.com/noah-isme/hkd-portal-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestStoreAtomicRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	err := store.Atomic(context.Background(), func(tx Store) error {
		course := models.Course{Name: "Hapkido Basics", DurationMonths: 6, MonthlyFeeAmount: 5000, Currency: "USD", Active: true, EnrollmentOpen: true}
		if err := tx.Courses().Create(context.Background(), &course); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	courses, listErr := store.Courses().List(context.Background(), false)
	require.NoError(t, listErr)
	require.Empty(t, courses, "writes inside a failed transaction must not persist")
}

func TestStoreAtomicCommits(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	err := store.Atomic(context.Background(), func(tx Store) error {
		course := models.Course{Name: "Hapkido Basics", DurationMonths: 6, MonthlyFeeAmount: 5000, Currency: "USD", Active: true, EnrollmentOpen: true}
		return tx.Courses().Create(context.Background(), &course)
	})
	require.NoError(t, err)

	courses, err := store.Courses().List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, courses, 1)
}
