package models

import "time"

// ProgramType classifies one-off events members can register for.
type ProgramType string

const (
	ProgramTypeTest        ProgramType = "test"
	ProgramTypeSeminar     ProgramType = "seminar"
	ProgramTypeCompetition ProgramType = "competition"
)

// Program is a one-off event with optional capacity. MaxParticipants of zero
// means unlimited.
type Program struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	Name                string      `gorm:"size:255;not null" json:"name"`
	Description         string      `gorm:"type:text" json:"description"`
	Type                ProgramType `gorm:"size:32;not null" json:"type"`
	FeeAmount           int64       `gorm:"not null;default:0" json:"fee_amount"`
	Currency            string      `gorm:"size:3;not null;default:'USD'" json:"currency"`
	StartsAt            time.Time   `gorm:"not null" json:"starts_at"`
	MaxParticipants     int         `gorm:"not null;default:0" json:"max_participants"`
	CurrentParticipants int         `gorm:"not null;default:0" json:"current_participants"`
	Open                bool        `gorm:"not null;default:true" json:"open"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// RegistrationStatus is the lifecycle state of a program registration.
type RegistrationStatus string

const (
	RegistrationStatusPendingPayment RegistrationStatus = "pending_payment"
	RegistrationStatusApproved       RegistrationStatus = "approved"
	RegistrationStatusRejected       RegistrationStatus = "rejected"
	RegistrationStatusCancelled      RegistrationStatus = "cancelled"
)

// IsTerminal reports whether the registration reached a final state.
func (s RegistrationStatus) IsTerminal() bool {
	switch s {
	case RegistrationStatusApproved, RegistrationStatusRejected, RegistrationStatusCancelled:
		return true
	default:
		return false
	}
}

// ProgramRegistration is one member's place in a program. At most one
// non-terminal registration exists per (user, program).
type ProgramRegistration struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	UserID          uint               `gorm:"not null;index" json:"user_id"`
	ProgramID       uint               `gorm:"not null;index" json:"program_id"`
	MemberProfileID uint               `gorm:"not null;index" json:"member_profile_id"`
	Status          RegistrationStatus `gorm:"size:32;not null;index" json:"status"`

	PaymentTransactionID string     `gorm:"size:128" json:"payment_transaction_id"`
	PaymentProofURL      string     `gorm:"size:512" json:"payment_proof_url"`
	PaymentSubmittedAt   *time.Time `json:"payment_submitted_at"`
	VerifiedBy           *uint      `json:"verified_by"`
	VerifiedAt           *time.Time `json:"verified_at"`

	ReviewedBy *uint      `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Program Program `gorm:"constraint:OnUpdate:CASCADE" json:"program"`
}
