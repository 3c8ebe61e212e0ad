package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// ApplicationCreateRequest opens a new enrollment application. The intake
// document is validated against the intake JSON schema at creation time.
type ApplicationCreateRequest struct {
	CourseID uint            `json:"course_id" validate:"required"`
	Intake   json.RawMessage `json:"intake" validate:"required"`
}

// ApplicationUpdateRequest replaces the intake document while the
// application is still awaiting payment.
type ApplicationUpdateRequest struct {
	Intake json.RawMessage `json:"intake" validate:"required"`
}

// PaymentSubmitRequest reports a completed payment against an application.
type PaymentSubmitRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,min=3,max=128"`
	ProofURL      string `json:"proof_url" validate:"required,url"`
}

// PaymentVerifyRequest confirms a submitted payment.
type PaymentVerifyRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

// ApplicationApproveRequest carries optional reviewer notes for approval.
type ApplicationApproveRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

// ApplicationRejectRequest requires an explicit rejection reason.
type ApplicationRejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=2000"`
}

// ApplicationFilterRequest narrows application listings.
type ApplicationFilterRequest struct {
	CourseID uint                     `json:"course_id"`
	Status   models.ApplicationStatus `json:"status" validate:"omitempty,oneof=pending_payment payment_submitted payment_verified approved rejected cancelled"`
	Page     int                      `json:"page" validate:"omitempty,gte=1"`
	PageSize int                      `json:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ApplicationResponse is the serialized representation returned to clients.
type ApplicationResponse struct {
	ID                 uint                     `json:"id"`
	ApplicationNumber  string                   `json:"application_number"`
	UserID             uint                     `json:"user_id"`
	CourseID           uint                     `json:"course_id"`
	CourseName         string                   `json:"course_name,omitempty"`
	Status             models.ApplicationStatus `json:"status"`
	Intake             json.RawMessage          `json:"intake,omitempty"`
	TransactionID      string                   `json:"transaction_id,omitempty"`
	ProofURL           string                   `json:"proof_url,omitempty"`
	PaymentSubmittedAt *time.Time               `json:"payment_submitted_at,omitempty"`
	PaymentVerifiedAt  *time.Time               `json:"payment_verified_at,omitempty"`
	ReviewedAt         *time.Time               `json:"reviewed_at,omitempty"`
	ReviewNotes        string                   `json:"review_notes,omitempty"`
	RejectionReason    string                   `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// ApplicationListResponse wraps a paginated application listing.
type ApplicationListResponse struct {
	Items []ApplicationResponse `json:"items"`
	Total int64                 `json:"total"`
}

// NewApplicationResponse converts a model into a DTO.
func NewApplicationResponse(model models.EnrollmentApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:                 model.ID,
		ApplicationNumber:  model.ApplicationNumber,
		UserID:             model.UserID,
		CourseID:           model.CourseID,
		CourseName:         model.Course.Name,
		Status:             model.Status,
		Intake:             json.RawMessage(model.Intake),
		TransactionID:      model.PaymentTransactionID,
		ProofURL:           model.PaymentProofURL,
		PaymentSubmittedAt: model.PaymentSubmittedAt,
		PaymentVerifiedAt:  model.PaymentVerifiedAt,
		ReviewedAt:         model.ReviewedAt,
		ReviewNotes:        model.ReviewNotes,
		RejectionReason:    model.RejectionReason,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewApplicationResponseSlice converts a slice of models into DTOs.
func NewApplicationResponseSlice(applications []models.EnrollmentApplication) []ApplicationResponse {
	responses := make([]ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		responses = append(responses, NewApplicationResponse(application))
	}
	return responses
}
