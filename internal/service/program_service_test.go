package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

func newProgramService(t *testing.T, store repository.Store, authz AuthzService) *programService {
	t.Helper()
	svc := NewProgramService(store, authz, testValidator(), testPublisher(), testLogger()).(*programService)
	svc.now = func() time.Time { return time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func seedProgram(t *testing.T, store repository.Store, maxParticipants int, open bool) models.Program {
	t.Helper()
	program := models.Program{
		Name:            "Black Belt Test",
		Type:            models.ProgramTypeTest,
		FeeAmount:       7500,
		Currency:        "USD",
		StartsAt:        time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		MaxParticipants: maxParticipants,
		Open:            open,
	}
	require.NoError(t, store.Programs().Create(context.Background(), &program))
	return program
}

func TestProgramRegisterRequiresCompleteProfile(t *testing.T) {
	store, db := setupStore(t)
	svc := newProgramService(t, store, newTestAuthz(db))
	ctx := context.Background()
	program := seedProgram(t, store, 0, true)

	_, err := svc.Register(ctx, 1, program.ID, dto.RegistrationCreateRequest{})
	require.ErrorIs(t, err, ErrProfileNotFound)

	incomplete := models.MemberProfile{UserID: 2, MemberNumber: "HKD-M-2026-0002", FullName: "Jin Seo", BeltRank: "white"}
	require.NoError(t, store.Profiles().Create(ctx, &incomplete))
	_, err = svc.Register(ctx, 2, program.ID, dto.RegistrationCreateRequest{})
	require.ErrorIs(t, err, ErrProfileIncomplete)

	seedCompleteProfile(t, store, 3)
	created, err := svc.Register(ctx, 3, program.ID, dto.RegistrationCreateRequest{})
	require.NoError(t, err)
	require.Equal(t, models.RegistrationStatusPendingPayment, created.Status)
}

func TestProgramRegisterClaimsCapacityAtomically(t *testing.T) {
	store, db := setupStore(t)
	svc := newProgramService(t, store, newTestAuthz(db))
	ctx := context.Background()
	program := seedProgram(t, store, 1, true)

	seedCompleteProfile(t, store, 1)
	seedCompleteProfile(t, store, 2)

	_, err := svc.Register(ctx, 1, program.ID, dto.RegistrationCreateRequest{})
	require.NoError(t, err)

	_, err = svc.Register(ctx, 2, program.ID, dto.RegistrationCreateRequest{})
	require.ErrorIs(t, err, ErrProgramFull)

	reloaded, err := store.Programs().GetByID(ctx, program.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.CurrentParticipants, "a rejected registration must not leak a slot")
}

func TestProgramRegisterRejectsDuplicateAndClosed(t *testing.T) {
	store, db := setupStore(t)
	svc := newProgramService(t, store, newTestAuthz(db))
	ctx := context.Background()

	program := seedProgram(t, store, 0, true)
	seedCompleteProfile(t, store, 1)

	_, err := svc.Register(ctx, 1, program.ID, dto.RegistrationCreateRequest{})
	require.NoError(t, err)
	_, err = svc.Register(ctx, 1, program.ID, dto.RegistrationCreateRequest{})
	require.ErrorIs(t, err, ErrDuplicateRegistration)

	closed := seedProgram(t, store, 0, false)
	_, err = svc.Register(ctx, 1, closed.ID, dto.RegistrationCreateRequest{})
	require.ErrorIs(t, err, ErrProgramClosed)
}

func TestProgramRegisterStampsPaymentWhenProvided(t *testing.T) {
	store, db := setupStore(t)
	svc := newProgramService(t, store, newTestAuthz(db))
	ctx := context.Background()
	program := seedProgram(t, store, 0, true)
	seedCompleteProfile(t, store, 1)

	created, err := svc.Register(ctx, 1, program.ID, dto.RegistrationCreateRequest{
		TransactionID: "TX-4001",
		ProofURL:      "https://cdn.example.com/proof.png",
	})
	require.NoError(t, err)
	require.Equal(t, "TX-4001", created.TransactionID)

	registration, err := store.Registrations().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, registration.PaymentSubmittedAt)
}

func TestProgramRegisterLostRaceMapsToDuplicateAndReturnsSlot(t *testing.T) {
	store, db := setupStore(t)
	svc := newProgramService(t, blindGuardStore{Store: store}, newTestAuthz(db))
	ctx := context.Background()
	program := seedProgram(t, store, 5, true)
	seedCompleteProfile(t, store, 1)

	_, err := svc.Register(ctx, 1, program.ID, dto.RegistrationCreateRequest{})
	require.NoError(t, err)

	// The blind guard sends the second registration straight to the insert,
	// where the open-registration index rejects it.
	_, err = svc.Register(ctx, 1, program.ID, dto.RegistrationCreateRequest{})
	require.ErrorIs(t, err, ErrDuplicateRegistration)

	reloaded, err := store.Programs().GetByID(ctx, program.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.CurrentParticipants, "the rolled-back registration must return its slot")
}

func TestProgramRegistrationReviewIsTerminal(t *testing.T) {
	store, db := setupStore(t)
	svc := newProgramService(t, store, newTestAuthz(db))
	ctx := context.Background()
	program := seedProgram(t, store, 0, true)
	seedCompleteProfile(t, store, 1)

	created, err := svc.Register(ctx, 1, program.ID, dto.RegistrationCreateRequest{})
	require.NoError(t, err)

	approved, err := svc.UpdateRegistrationStatus(ctx, 9, created.ID, dto.RegistrationStatusRequest{Status: models.RegistrationStatusApproved})
	require.NoError(t, err)
	require.Equal(t, models.RegistrationStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedAt)

	_, err = svc.UpdateRegistrationStatus(ctx, 9, created.ID, dto.RegistrationStatusRequest{Status: models.RegistrationStatusRejected})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestProgramDeleteRegistrationReturnsSlot(t *testing.T) {
	store, db := setupStore(t)
	svc := newProgramService(t, store, newTestAuthz(db))
	ctx := context.Background()
	program := seedProgram(t, store, 5, true)
	seedCompleteProfile(t, store, 1)

	created, err := svc.Register(ctx, 1, program.ID, dto.RegistrationCreateRequest{})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteRegistration(ctx, 2, created.ID), ErrForbidden)

	require.NoError(t, svc.DeleteRegistration(ctx, 1, created.ID))
	reloaded, err := store.Programs().GetByID(ctx, program.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.CurrentParticipants)

	require.ErrorIs(t, svc.DeleteRegistration(ctx, 1, created.ID), ErrRegistrationNotFound)
}

func TestProgramListRegistrationsScopesToOwner(t *testing.T) {
	store, db := setupStore(t)
	svc := newProgramService(t, store, newTestAuthz(db))
	ctx := context.Background()
	program := seedProgram(t, store, 0, true)
	seedCompleteProfile(t, store, 1)
	seedCompleteProfile(t, store, 2)

	_, err := svc.Register(ctx, 1, program.ID, dto.RegistrationCreateRequest{})
	require.NoError(t, err)
	_, err = svc.Register(ctx, 2, program.ID, dto.RegistrationCreateRequest{})
	require.NoError(t, err)

	listed, err := svc.ListRegistrations(ctx, 1, repository.RegistrationFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), listed.Total)

	grantPermission(t, db, 3, models.ResourceProgramRegistration, models.ActionManage)
	listed, err = svc.ListRegistrations(ctx, 3, repository.RegistrationFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), listed.Total)
}
