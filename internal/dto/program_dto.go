package dto

import (
	"time"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// ProgramCreateRequest defines a new one-off program.
type ProgramCreateRequest struct {
	Name            string `json:"name" validate:"required,min=3,max=255"`
	Description     string `json:"description" validate:"omitempty,max=4000"`
	Type            string `json:"type" validate:"required,oneof=test seminar competition"`
	FeeAmount       int64  `json:"fee_amount" validate:"gte=0"`
	Currency        string `json:"currency" validate:"omitempty,len=3"`
	StartsAt        string `json:"starts_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	MaxParticipants int    `json:"max_participants" validate:"gte=0"`
}

// ProgramUpdateRequest patches program fields.
type ProgramUpdateRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=3,max=255"`
	Description     *string `json:"description" validate:"omitempty,max=4000"`
	FeeAmount       *int64  `json:"fee_amount" validate:"omitempty,gte=0"`
	MaxParticipants *int    `json:"max_participants" validate:"omitempty,gte=0"`
	Open            *bool   `json:"open"`
}

// RegistrationCreateRequest registers the caller for a program. Payment
// details may accompany the registration or follow later.
type RegistrationCreateRequest struct {
	TransactionID string `json:"transaction_id" validate:"omitempty,min=3,max=128"`
	ProofURL      string `json:"proof_url" validate:"omitempty,url"`
}

// RegistrationStatusRequest is the administrative approve/reject decision.
type RegistrationStatusRequest struct {
	Status models.RegistrationStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// ProgramResponse is the serialized representation of a program.
type ProgramResponse struct {
	ID                  uint               `json:"id"`
	Name                string             `json:"name"`
	Description         string             `json:"description"`
	Type                models.ProgramType `json:"type"`
	FeeAmount           int64              `json:"fee_amount"`
	Currency            string             `json:"currency"`
	StartsAt            time.Time          `json:"starts_at"`
	MaxParticipants     int                `json:"max_participants"`
	CurrentParticipants int                `json:"current_participants"`
	Open                bool               `json:"open"`
}

// RegistrationResponse is the serialized representation of a registration.
type RegistrationResponse struct {
	ID            uint                      `json:"id"`
	UserID        uint                      `json:"user_id"`
	ProgramID     uint                      `json:"program_id"`
	ProgramName   string                    `json:"program_name,omitempty"`
	Status        models.RegistrationStatus `json:"status"`
	TransactionID string                    `json:"transaction_id,omitempty"`
	ProofURL      string                    `json:"proof_url,omitempty"`
	ReviewedAt    *time.Time                `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

// RegistrationListResponse wraps a paginated registration listing.
type RegistrationListResponse struct {
	Items []RegistrationResponse `json:"items"`
	Total int64                  `json:"total"`
}

// NewProgramResponse converts a model into a DTO.
func NewProgramResponse(model models.Program) ProgramResponse {
	return ProgramResponse{
		ID:                  model.ID,
		Name:                model.Name,
		Description:         model.Description,
		Type:                model.Type,
		FeeAmount:           model.FeeAmount,
		Currency:            model.Currency,
		StartsAt:            model.StartsAt,
		MaxParticipants:     model.MaxParticipants,
		CurrentParticipants: model.CurrentParticipants,
		Open:                model.Open,
	}
}

// NewProgramResponseSlice converts a slice of models into DTOs.
func NewProgramResponseSlice(programs []models.Program) []ProgramResponse {
	responses := make([]ProgramResponse, 0, len(programs))
	for _, program := range programs {
		responses = append(responses, NewProgramResponse(program))
	}
	return responses
}

// NewRegistrationResponse converts a model into a DTO.
func NewRegistrationResponse(model models.ProgramRegistration) RegistrationResponse {
	return RegistrationResponse{
		ID:            model.ID,
		UserID:        model.UserID,
		ProgramID:     model.ProgramID,
		ProgramName:   model.Program.Name,
		Status:        model.Status,
		TransactionID: model.PaymentTransactionID,
		ProofURL:      model.PaymentProofURL,
		ReviewedAt:    model.ReviewedAt,
		CreatedAt:     model.CreatedAt,
	}
}

// NewRegistrationResponseSlice converts a slice of models into DTOs.
func NewRegistrationResponseSlice(registrations []models.ProgramRegistration) []RegistrationResponse {
	responses := make([]RegistrationResponse, 0, len(registrations))
	for _, registration := range registrations {
		responses = append(responses, NewRegistrationResponse(registration))
	}
	return responses
}
