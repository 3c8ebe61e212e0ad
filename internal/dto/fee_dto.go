package dto

import (
	"time"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// FeeGenerateRequest triggers monthly fee generation for one billing period,
// optionally restricted to a single enrollment.
type FeeGenerateRequest struct {
	Period       string `json:"period" validate:"required,datetime=2006-01"`
	EnrollmentID *uint  `json:"enrollment_id" validate:"omitempty,gt=0"`
}

// FeeGenerationResult reports the outcome of one generation run. Failures
// are isolated per enrollment and counted, never escalated to a batch error.
type FeeGenerationResult struct {
	Period  string `json:"period"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Errored int    `json:"errored"`
}

// FeePaymentSubmitRequest reports a payment against a monthly fee.
type FeePaymentSubmitRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,min=3,max=128"`
	ProofURL      string `json:"proof_url" validate:"required,url"`
}

// FeePaymentVerifyRequest records the verified amount. The fee settles as
// paid or partial depending on whether the amount covers what is owed.
type FeePaymentVerifyRequest struct {
	AmountPaid int64  `json:"amount_paid" validate:"required,gt=0"`
	Notes      string `json:"notes" validate:"omitempty,max=2000"`
}

// FeeWaiveRequest forgives a fee; a reason is mandatory.
type FeeWaiveRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=2000"`
}

// FeeFilterRequest narrows fee listings.
type FeeFilterRequest struct {
	EnrollmentID uint             `json:"enrollment_id"`
	Period       string           `json:"period" validate:"omitempty,datetime=2006-01"`
	Status       models.FeeStatus `json:"status" validate:"omitempty,oneof=pending payment_submitted paid partial waived overdue"`
	Page         int              `json:"page" validate:"omitempty,gte=1"`
	PageSize     int              `json:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// FeeResponse is the serialized representation of a monthly fee.
type FeeResponse struct {
	ID                 uint             `json:"id"`
	EnrollmentID       uint             `json:"enrollment_id"`
	MemberProfileID    uint             `json:"member_profile_id"`
	Period             string           `json:"period"`
	Amount             int64            `json:"amount"`
	AmountPaid         int64            `json:"amount_paid"`
	Currency           string           `json:"currency"`
	DueDate            time.Time        `json:"due_date"`
	Status             models.FeeStatus `json:"status"`
	TransactionID      string           `json:"transaction_id,omitempty"`
	ProofURL           string           `json:"proof_url,omitempty"`
	PaymentSubmittedAt *time.Time       `json:"payment_submitted_at,omitempty"`
	VerifiedAt         *time.Time       `json:"verified_at,omitempty"`
	WaivedReason       string           `json:"waived_reason,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

// FeeListResponse wraps a paginated fee listing.
type FeeListResponse struct {
	Items []FeeResponse `json:"items"`
	Total int64         `json:"total"`
}

// FeeSummaryResponse aggregates a member's billing position.
type FeeSummaryResponse struct {
	MemberProfileID uint  `json:"member_profile_id"`
	TotalBilled     int64 `json:"total_billed"`
	TotalPaid       int64 `json:"total_paid"`
	OpenFees        int   `json:"open_fees"`
	OverdueFees     int   `json:"overdue_fees"`
}

// NewFeeResponse converts a model into a DTO.
func NewFeeResponse(model models.MonthlyFee) FeeResponse {
	return FeeResponse{
		ID:                 model.ID,
		EnrollmentID:       model.EnrollmentID,
		MemberProfileID:    model.MemberProfileID,
		Period:             model.Period,
		Amount:             model.Amount,
		AmountPaid:         model.AmountPaid,
		Currency:           model.Currency,
		DueDate:            model.DueDate,
		Status:             model.Status,
		TransactionID:      model.PaymentTransactionID,
		ProofURL:           model.PaymentProofURL,
		PaymentSubmittedAt: model.PaymentSubmittedAt,
		VerifiedAt:         model.VerifiedAt,
		WaivedReason:       model.WaivedReason,
		CreatedAt:          model.CreatedAt,
	}
}

// NewFeeResponseSlice converts a slice of models into DTOs.
func NewFeeResponseSlice(fees []models.MonthlyFee) []FeeResponse {
	responses := make([]FeeResponse, 0, len(fees))
	for _, fee := range fees {
		responses = append(responses, NewFeeResponse(fee))
	}
	return responses
}
