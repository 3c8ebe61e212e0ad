package dto

import (
	"time"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// MemberProfileUpdateRequest patches administrative profile fields.
type MemberProfileUpdateRequest struct {
	FullName              *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	Phone                 *string `json:"phone" validate:"omitempty,min=5,max=32"`
	Address               *string `json:"address" validate:"omitempty,max=1000"`
	EmergencyContactName  *string `json:"emergency_contact_name" validate:"omitempty,max=255"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" validate:"omitempty,min=5,max=32"`
	BeltRank              *string `json:"belt_rank" validate:"omitempty,oneof=white yellow green blue red black"`
}

// MemberProfileResponse is the serialized representation of a profile.
type MemberProfileResponse struct {
	ID           uint       `json:"id"`
	UserID       uint       `json:"user_id"`
	MemberNumber string     `json:"member_number"`
	FullName     string     `json:"full_name"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	BeltRank     string     `json:"belt_rank"`
	Complete     bool       `json:"complete"`
	CreatedAt    time.Time  `json:"created_at"`
}

// MemberProfileListResponse wraps a paginated profile listing.
type MemberProfileListResponse struct {
	Items []MemberProfileResponse `json:"items"`
	Total int64                   `json:"total"`
}

// NewMemberProfileResponse converts a model into a DTO.
func NewMemberProfileResponse(model models.MemberProfile) MemberProfileResponse {
	return MemberProfileResponse{
		ID:           model.ID,
		UserID:       model.UserID,
		MemberNumber: model.MemberNumber,
		FullName:     model.FullName,
		DateOfBirth:  model.DateOfBirth,
		Phone:        model.Phone,
		BeltRank:     model.BeltRank,
		Complete:     model.IsComplete(),
		CreatedAt:    model.CreatedAt,
	}
}

// NewMemberProfileResponseSlice converts a slice of models into DTOs.
func NewMemberProfileResponseSlice(profiles []models.MemberProfile) []MemberProfileResponse {
	responses := make([]MemberProfileResponse, 0, len(profiles))
	for _, profile := range profiles {
		responses = append(responses, NewMemberProfileResponse(profile))
	}
	return responses
}
