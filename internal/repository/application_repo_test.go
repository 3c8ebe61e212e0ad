package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

func TestApplicationRepositoryHasNonTerminal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	open := models.EnrollmentApplication{ApplicationNumber: "HKD-A-2026-0001", UserID: 1, CourseID: 1, Status: models.ApplicationStatusPaymentSubmitted}
	closed := models.EnrollmentApplication{ApplicationNumber: "HKD-A-2026-0002", UserID: 2, CourseID: 1, Status: models.ApplicationStatusRejected}
	require.NoError(t, repo.Create(ctx, &open))
	require.NoError(t, repo.Create(ctx, &closed))

	found, err := repo.HasNonTerminal(ctx, 1, 1)
	require.NoError(t, err)
	require.True(t, found)

	found, err = repo.HasNonTerminal(ctx, 2, 1)
	require.NoError(t, err)
	require.False(t, found, "terminal applications must not block a new one")

	found, err = repo.HasNonTerminal(ctx, 1, 99)
	require.NoError(t, err)
	require.False(t, found)
}

func TestApplicationRepositoryOneOpenApplicationPerCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	first := models.EnrollmentApplication{ApplicationNumber: "HKD-A-2026-0001", UserID: 1, CourseID: 1, Status: models.ApplicationStatusPendingPayment}
	require.NoError(t, repo.Create(ctx, &first))

	// Simulates the writer that lost a concurrent-create race: the guard
	// query never ran against the first row, so only the index stands in
	// the way.
	second := models.EnrollmentApplication{ApplicationNumber: "HKD-A-2026-0002", UserID: 1, CourseID: 1, Status: models.ApplicationStatusPaymentSubmitted}
	require.ErrorIs(t, repo.Create(ctx, &second), gorm.ErrDuplicatedKey)

	otherCourse := models.EnrollmentApplication{ApplicationNumber: "HKD-A-2026-0003", UserID: 1, CourseID: 2, Status: models.ApplicationStatusPendingPayment}
	require.NoError(t, repo.Create(ctx, &otherCourse))

	first.Status = models.ApplicationStatusCancelled
	require.NoError(t, repo.Update(ctx, &first))

	reopened := models.EnrollmentApplication{ApplicationNumber: "HKD-A-2026-0004", UserID: 1, CourseID: 1, Status: models.ApplicationStatusPendingPayment}
	require.NoError(t, repo.Create(ctx, &reopened), "terminal rows must not occupy the open-application index")
}

func TestApplicationRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.EnrollmentApplication{ApplicationNumber: "HKD-A-2026-0001", UserID: 1, CourseID: 1, Status: models.ApplicationStatusPendingPayment}))
	require.NoError(t, repo.Create(ctx, &models.EnrollmentApplication{ApplicationNumber: "HKD-A-2026-0002", UserID: 1, CourseID: 2, Status: models.ApplicationStatusApproved}))
	require.NoError(t, repo.Create(ctx, &models.EnrollmentApplication{ApplicationNumber: "HKD-A-2026-0003", UserID: 2, CourseID: 1, Status: models.ApplicationStatusPendingPayment}))

	applications, total, err := repo.List(ctx, ApplicationFilter{UserID: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, applications, 2)

	applications, total, err = repo.List(ctx, ApplicationFilter{Status: models.ApplicationStatusPendingPayment})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, application := range applications {
		require.Equal(t, models.ApplicationStatusPendingPayment, application.Status)
	}

	applications, total, err = repo.List(ctx, ApplicationFilter{UserID: 1, CourseID: 2})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "HKD-A-2026-0002", applications[0].ApplicationNumber)
}
