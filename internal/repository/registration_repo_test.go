package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

func TestRegistrationRepositoryOneOpenRegistrationPerProgram(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	open := models.ProgramRegistration{UserID: 1, ProgramID: 1, MemberProfileID: 1, Status: models.RegistrationStatusPendingPayment}
	require.NoError(t, repo.Create(ctx, &open))

	duplicate := models.ProgramRegistration{UserID: 1, ProgramID: 1, MemberProfileID: 1, Status: models.RegistrationStatusPendingPayment}
	require.ErrorIs(t, repo.Create(ctx, &duplicate), gorm.ErrDuplicatedKey,
		"the partial index must block a second open registration even when the guard query missed it")

	otherProgram := models.ProgramRegistration{UserID: 1, ProgramID: 2, MemberProfileID: 1, Status: models.RegistrationStatusPendingPayment}
	require.NoError(t, repo.Create(ctx, &otherProgram))

	open.Status = models.RegistrationStatusApproved
	require.NoError(t, repo.Update(ctx, &open))

	again := models.ProgramRegistration{UserID: 1, ProgramID: 1, MemberProfileID: 1, Status: models.RegistrationStatusPendingPayment}
	require.NoError(t, repo.Create(ctx, &again), "reviewed registrations must not occupy the open-registration index")
}

func TestRegistrationRepositoryHasNonTerminal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.ProgramRegistration{UserID: 1, ProgramID: 1, MemberProfileID: 1, Status: models.RegistrationStatusPendingPayment}))
	require.NoError(t, repo.Create(ctx, &models.ProgramRegistration{UserID: 2, ProgramID: 1, MemberProfileID: 2, Status: models.RegistrationStatusRejected}))

	found, err := repo.HasNonTerminal(ctx, 1, 1)
	require.NoError(t, err)
	require.True(t, found)

	found, err = repo.HasNonTerminal(ctx, 2, 1)
	require.NoError(t, err)
	require.False(t, found, "terminal registrations must not block a new one")
}
