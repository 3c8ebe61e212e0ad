package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

func TestMonthlyFeeRepositoryExistsForPeriod(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMonthlyFeeRepository(db)
	ctx := context.Background()

	fee := models.MonthlyFee{EnrollmentID: 7, MemberProfileID: 3, Period: "2026-08", BillingYear: 2026, Amount: 5000, Currency: "USD", DueDate: time.Now(), Status: models.FeeStatusPending}
	require.NoError(t, repo.Create(ctx, &fee))

	exists, err := repo.ExistsForPeriod(ctx, 7, "2026-08")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsForPeriod(ctx, 7, "2026-09")
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = repo.ExistsForPeriod(ctx, 8, "2026-08")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestMonthlyFeeRepositoryUniquePerEnrollmentAndPeriod(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMonthlyFeeRepository(db)
	ctx := context.Background()

	first := models.MonthlyFee{EnrollmentID: 7, MemberProfileID: 3, Period: "2026-08", BillingYear: 2026, Amount: 5000, Currency: "USD", DueDate: time.Now(), Status: models.FeeStatusPending}
	require.NoError(t, repo.Create(ctx, &first))

	duplicate := models.MonthlyFee{EnrollmentID: 7, MemberProfileID: 3, Period: "2026-08", BillingYear: 2026, Amount: 5000, Currency: "USD", DueDate: time.Now(), Status: models.FeeStatusPending}
	require.ErrorIs(t, repo.Create(ctx, &duplicate), gorm.ErrDuplicatedKey,
		"a second fee for the same enrollment and period must surface as the translated sentinel")

	other := models.MonthlyFee{EnrollmentID: 7, MemberProfileID: 3, Period: "2026-09", BillingYear: 2026, Amount: 5000, Currency: "USD", DueDate: time.Now(), Status: models.FeeStatusPending}
	require.NoError(t, repo.Create(ctx, &other))
}
