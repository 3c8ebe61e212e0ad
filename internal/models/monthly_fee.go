package models

import "time"

// FeeStatus is the lifecycle state of a monthly fee.
type FeeStatus string

const (
	// FeeStatusPending means the fee is generated and awaiting payment.
	FeeStatusPending FeeStatus = "pending"
	// FeeStatusPaymentSubmitted means the member reported a payment.
	FeeStatusPaymentSubmitted FeeStatus = "payment_submitted"
	// FeeStatusPaid means verification found the full amount covered.
	FeeStatusPaid FeeStatus = "paid"
	// FeeStatusPartial means verification found an underpayment; the period
	// is settled short, which is a legitimate outcome rather than an error.
	FeeStatusPartial FeeStatus = "partial"
	// FeeStatusWaived means an administrator forgave the fee.
	FeeStatusWaived FeeStatus = "waived"
	// FeeStatusOverdue flags an unpaid fee past its due date. Payment can
	// still be submitted from this state.
	FeeStatusOverdue FeeStatus = "overdue"
)

// IsTerminal reports whether the fee's period is settled.
func (s FeeStatus) IsTerminal() bool {
	switch s {
	case FeeStatusPaid, FeeStatusPartial, FeeStatusWaived:
		return true
	default:
		return false
	}
}

// MonthlyFee is one billing period's charge against a course enrollment.
// The member profile id is denormalized for member-facing listings. At most
// one fee exists per (enrollment, period); the unique index is the
// concurrency control for the billing engine's idempotent generation.
type MonthlyFee struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID    uint      `gorm:"not null;uniqueIndex:idx_fee_enrollment_period" json:"enrollment_id"`
	MemberProfileID uint      `gorm:"not null;index" json:"member_profile_id"`
	Period          string    `gorm:"size:7;not null;uniqueIndex:idx_fee_enrollment_period" json:"period"`
	BillingYear     int       `gorm:"not null;index" json:"billing_year"`
	Amount          int64     `gorm:"not null" json:"amount"`
	AmountPaid      int64     `gorm:"not null;default:0" json:"amount_paid"`
	Currency        string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	DueDate         time.Time `gorm:"not null" json:"due_date"`
	Status          FeeStatus `gorm:"size:32;not null;index" json:"status"`

	PaymentTransactionID string     `gorm:"size:128" json:"payment_transaction_id"`
	PaymentProofURL      string     `gorm:"size:512" json:"payment_proof_url"`
	PaymentSubmittedAt   *time.Time `json:"payment_submitted_at"`
	VerifiedBy           *uint      `json:"verified_by"`
	VerifiedAt           *time.Time `json:"verified_at"`
	WaivedReason         string     `gorm:"type:text" json:"waived_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
