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

func newBillingService(t *testing.T, store repository.Store, authz AuthzService) *billingService {
	t.Helper()
	svc := NewBillingService(store, authz, testValidator(), testPublisher(), nil, time.Minute, testLogger()).(*billingService)
	svc.now = func() time.Time { return time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func seedEnrollment(t *testing.T, store repository.Store, profileID uint, active bool) models.CourseEnrollment {
	t.Helper()
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	enrollment := models.CourseEnrollment{
		ApplicationID:    profileID,
		MemberProfileID:  profileID,
		CourseID:         1,
		StartDate:        start,
		ExpectedEndDate:  start.AddDate(0, 6, 0),
		MonthlyFeeAmount: 5000,
		Currency:         "USD",
		Active:           active,
	}
	require.NoError(t, store.Enrollments().Create(context.Background(), &enrollment))
	return enrollment
}

func TestBillingGenerateIsIdempotentPerPeriod(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, store, newTestAuthz(db))
	ctx := context.Background()

	profile := seedCompleteProfile(t, store, 1)
	seedEnrollment(t, store, profile.ID, true)
	otherProfile := seedCompleteProfile(t, store, 2)
	seedEnrollment(t, store, otherProfile.ID, true)

	first, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-09"})
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)
	require.Equal(t, 0, first.Skipped)
	require.Equal(t, 0, first.Errored)

	second, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-09"})
	require.NoError(t, err)
	require.Equal(t, 0, second.Created)
	require.Equal(t, 2, second.Skipped, "a re-run must not bill anyone twice")

	fees, total, err := store.Fees().List(ctx, repository.FeeFilter{Period: "2026-09"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, fee := range fees {
		require.Equal(t, models.FeeStatusPending, fee.Status)
		require.Equal(t, int64(5000), fee.Amount)
		require.Equal(t, time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC), fee.DueDate,
			"the due date derives from the billed period, not from when generation ran")
	}
}

func TestBillingGenerateSkipsInactiveEnrollments(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, store, newTestAuthz(db))

	profile := seedCompleteProfile(t, store, 1)
	seedEnrollment(t, store, profile.ID, false)

	result, err := svc.Generate(context.Background(), dto.FeeGenerateRequest{Period: "2026-09"})
	require.NoError(t, err)
	require.Equal(t, 0, result.Created)
}

func TestBillingGenerateSingleEnrollment(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, store, newTestAuthz(db))
	ctx := context.Background()

	profile := seedCompleteProfile(t, store, 1)
	target := seedEnrollment(t, store, profile.ID, true)
	other := seedCompleteProfile(t, store, 2)
	seedEnrollment(t, store, other.ID, true)

	result, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-09", EnrollmentID: &target.ID})
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)

	_, total, err := store.Fees().List(ctx, repository.FeeFilter{Period: "2026-09"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

// staleFeeReads mimics a generation run whose existence check read a
// snapshot taken before a concurrent run inserted the fee.
type staleFeeReads struct {
	repository.MonthlyFeeRepository
}

func (staleFeeReads) ExistsForPeriod(context.Context, uint, string) (bool, error) {
	return false, nil
}

type staleFeeStore struct {
	repository.Store
}

func (s staleFeeStore) Fees() repository.MonthlyFeeRepository {
	return staleFeeReads{MonthlyFeeRepository: s.Store.Fees()}
}

func TestBillingGenerateCountsLostRaceAsSkipped(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, staleFeeStore{Store: store}, newTestAuthz(db))
	ctx := context.Background()

	profile := seedCompleteProfile(t, store, 1)
	seedEnrollment(t, store, profile.ID, true)

	first, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-09"})
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	// The stale check lets the run reach the insert, which then loses
	// against the (enrollment, period) unique index.
	second, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-09"})
	require.NoError(t, err)
	require.Equal(t, 0, second.Created)
	require.Equal(t, 1, second.Skipped, "a lost unique-index race is a skip, not an error")
	require.Equal(t, 0, second.Errored)

	_, total, err := store.Fees().List(ctx, repository.FeeFilter{Period: "2026-09"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestBillingGenerateRejectsMalformedPeriod(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, store, newTestAuthz(db))

	_, err := svc.Generate(context.Background(), dto.FeeGenerateRequest{Period: "September 2026"})
	require.Error(t, err)
}

func TestBillingPaymentSettlesPaidOrPartial(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, store, newTestAuthz(db))
	ctx := context.Background()

	profile := seedCompleteProfile(t, store, 1)
	enrollment := seedEnrollment(t, store, profile.ID, true)
	_, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-09"})
	require.NoError(t, err)
	fees, _, err := store.Fees().List(ctx, repository.FeeFilter{EnrollmentID: enrollment.ID})
	require.NoError(t, err)
	feeID := fees[0].ID

	payment := dto.FeePaymentSubmitRequest{TransactionID: "TX-2001", ProofURL: "https://cdn.example.com/proof.png"}
	submitted, err := svc.SubmitPayment(ctx, 1, feeID, payment)
	require.NoError(t, err)
	require.Equal(t, models.FeeStatusPaymentSubmitted, submitted.Status)

	_, err = svc.SubmitPayment(ctx, 1, feeID, payment)
	require.ErrorIs(t, err, ErrInvalidTransition)

	partial, err := svc.VerifyPayment(ctx, 9, feeID, dto.FeePaymentVerifyRequest{AmountPaid: 3000})
	require.NoError(t, err)
	require.Equal(t, models.FeeStatusPartial, partial.Status, "an underpayment settles short, it never becomes paid")
	require.Equal(t, int64(3000), partial.AmountPaid)

	_, err = svc.VerifyPayment(ctx, 9, feeID, dto.FeePaymentVerifyRequest{AmountPaid: 5000})
	require.ErrorIs(t, err, ErrInvalidTransition, "a settled fee cannot be verified again")
}

func TestBillingFullPaymentBecomesPaid(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, store, newTestAuthz(db))
	ctx := context.Background()

	profile := seedCompleteProfile(t, store, 1)
	enrollment := seedEnrollment(t, store, profile.ID, true)
	_, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-09"})
	require.NoError(t, err)
	fees, _, err := store.Fees().List(ctx, repository.FeeFilter{EnrollmentID: enrollment.ID})
	require.NoError(t, err)

	_, err = svc.SubmitPayment(ctx, 1, fees[0].ID, dto.FeePaymentSubmitRequest{TransactionID: "TX-2001", ProofURL: "https://cdn.example.com/proof.png"})
	require.NoError(t, err)
	paid, err := svc.VerifyPayment(ctx, 9, fees[0].ID, dto.FeePaymentVerifyRequest{AmountPaid: 5000})
	require.NoError(t, err)
	require.Equal(t, models.FeeStatusPaid, paid.Status)
}

func TestBillingOverdueStillAcceptsPayment(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, store, newTestAuthz(db))
	ctx := context.Background()

	profile := seedCompleteProfile(t, store, 1)
	enrollment := seedEnrollment(t, store, profile.ID, true)
	_, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-07"})
	require.NoError(t, err)
	fees, _, err := store.Fees().List(ctx, repository.FeeFilter{EnrollmentID: enrollment.ID})
	require.NoError(t, err)

	overdue, err := svc.MarkOverdue(ctx, 9, fees[0].ID)
	require.NoError(t, err)
	require.Equal(t, models.FeeStatusOverdue, overdue.Status)

	_, err = svc.MarkOverdue(ctx, 9, fees[0].ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	submitted, err := svc.SubmitPayment(ctx, 1, fees[0].ID, dto.FeePaymentSubmitRequest{TransactionID: "TX-2002", ProofURL: "https://cdn.example.com/proof.png"})
	require.NoError(t, err)
	require.Equal(t, models.FeeStatusPaymentSubmitted, submitted.Status)
}

func TestBillingWaiveRequiresReasonAndIsTerminal(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, store, newTestAuthz(db))
	ctx := context.Background()

	profile := seedCompleteProfile(t, store, 1)
	enrollment := seedEnrollment(t, store, profile.ID, true)
	_, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-09"})
	require.NoError(t, err)
	fees, _, err := store.Fees().List(ctx, repository.FeeFilter{EnrollmentID: enrollment.ID})
	require.NoError(t, err)

	_, err = svc.Waive(ctx, 9, fees[0].ID, dto.FeeWaiveRequest{})
	require.Error(t, err, "a waiver without a reason must be rejected")

	waived, err := svc.Waive(ctx, 9, fees[0].ID, dto.FeeWaiveRequest{Reason: "scholarship"})
	require.NoError(t, err)
	require.Equal(t, models.FeeStatusWaived, waived.Status)
	require.Equal(t, "scholarship", waived.WaivedReason)

	_, err = svc.SubmitPayment(ctx, 1, fees[0].ID, dto.FeePaymentSubmitRequest{TransactionID: "TX-2003", ProofURL: "https://cdn.example.com/proof.png"})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBillingSummaryAggregatesPosition(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, store, newTestAuthz(db))
	ctx := context.Background()

	profile := seedCompleteProfile(t, store, 1)
	enrollment := seedEnrollment(t, store, profile.ID, true)
	_, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-08"})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-09"})
	require.NoError(t, err)

	fees, _, err := store.Fees().List(ctx, repository.FeeFilter{EnrollmentID: enrollment.ID, Period: "2026-08"})
	require.NoError(t, err)
	_, err = svc.SubmitPayment(ctx, 1, fees[0].ID, dto.FeePaymentSubmitRequest{TransactionID: "TX-3001", ProofURL: "https://cdn.example.com/proof.png"})
	require.NoError(t, err)
	_, err = svc.VerifyPayment(ctx, 9, fees[0].ID, dto.FeePaymentVerifyRequest{AmountPaid: 5000})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, profile.ID, summary.MemberProfileID)
	require.Equal(t, int64(10000), summary.TotalBilled)
	require.Equal(t, int64(5000), summary.TotalPaid)
	require.Equal(t, 1, summary.OpenFees)
	require.Equal(t, 0, summary.OverdueFees)

	_, err = svc.Summary(ctx, 99)
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestBillingFeeVisibilityIsOwnerOrPrivileged(t *testing.T) {
	store, db := setupStore(t)
	svc := newBillingService(t, store, newTestAuthz(db))
	ctx := context.Background()

	profile := seedCompleteProfile(t, store, 1)
	enrollment := seedEnrollment(t, store, profile.ID, true)
	_, err := svc.Generate(ctx, dto.FeeGenerateRequest{Period: "2026-09"})
	require.NoError(t, err)
	fees, _, err := store.Fees().List(ctx, repository.FeeFilter{EnrollmentID: enrollment.ID})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 1, fees[0].ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, fees[0].ID)
	require.ErrorIs(t, err, ErrForbidden)

	grantPermission(t, db, 2, models.ResourceMonthlyFee, models.ActionRead)
	_, err = svc.Get(ctx, 2, fees[0].ID)
	require.NoError(t, err)
}
