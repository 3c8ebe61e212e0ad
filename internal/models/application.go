package models

import (
	"time"

	"gorm.io/datatypes"
)

// ApplicationStatus is the lifecycle state of an enrollment application.
type ApplicationStatus string

const (
	// ApplicationStatusPendingPayment is the initial state after creation.
	ApplicationStatusPendingPayment ApplicationStatus = "pending_payment"
	// ApplicationStatusPaymentSubmitted means the applicant reported a payment.
	ApplicationStatusPaymentSubmitted ApplicationStatus = "payment_submitted"
	// ApplicationStatusPaymentVerified means staff confirmed the payment.
	ApplicationStatusPaymentVerified ApplicationStatus = "payment_verified"
	// ApplicationStatusApproved is the terminal success state.
	ApplicationStatusApproved ApplicationStatus = "approved"
	// ApplicationStatusRejected is a terminal failure state.
	ApplicationStatusRejected ApplicationStatus = "rejected"
	// ApplicationStatusCancelled is the terminal withdrawal state.
	ApplicationStatusCancelled ApplicationStatus = "cancelled"
)

// IsTerminal reports whether no further transition is defined from the state.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case ApplicationStatusApproved, ApplicationStatusRejected, ApplicationStatusCancelled:
		return true
	default:
		return false
	}
}

// EnrollmentApplication tracks one prospective student's request to join a
// course, from creation through payment verification to approval. Rows are
// mutated only through the application service's transition methods.
type EnrollmentApplication struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	ApplicationNumber string            `gorm:"size:32;uniqueIndex;not null" json:"application_number"`
	UserID            uint              `gorm:"not null;index" json:"user_id"`
	CourseID          uint              `gorm:"not null;index" json:"course_id"`
	Intake            datatypes.JSON    `gorm:"type:jsonb" json:"intake"`
	Status            ApplicationStatus `gorm:"size:32;not null;index" json:"status"`

	PaymentTransactionID string     `gorm:"size:128" json:"payment_transaction_id"`
	PaymentProofURL      string     `gorm:"size:512" json:"payment_proof_url"`
	PaymentSubmittedAt   *time.Time `json:"payment_submitted_at"`
	PaymentVerifiedAt    *time.Time `json:"payment_verified_at"`
	PaymentVerifiedBy    *uint      `json:"payment_verified_by"`

	ReviewedBy      *uint      `json:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	ReviewNotes     string     `gorm:"type:text" json:"review_notes"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Course Course `gorm:"constraint:OnUpdate:CASCADE" json:"course"`
}
