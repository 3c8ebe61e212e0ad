package models

import (
	"strings"
	"time"
)

// MemberProfile holds the dojang-facing identity of a user. Exactly one
// profile exists per user; it is materialized when the user's first
// enrollment application is approved.
type MemberProfile struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	MemberNumber          string     `gorm:"size:32;uniqueIndex;not null" json:"member_number"`
	FullName              string     `gorm:"size:255;not null" json:"full_name"`
	DateOfBirth           *time.Time `json:"date_of_birth"`
	Phone                 string     `gorm:"size:32" json:"phone"`
	Address               string     `gorm:"type:text" json:"address"`
	EmergencyContactName  string     `gorm:"size:255" json:"emergency_contact_name"`
	EmergencyContactPhone string     `gorm:"size:32" json:"emergency_contact_phone"`
	BeltRank              string     `gorm:"size:32;not null;default:'white'" json:"belt_rank"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// IsComplete reports whether the profile satisfies the eligibility bar shared
// by course enrollment and program registration.
func (p MemberProfile) IsComplete() bool {
	return strings.TrimSpace(p.FullName) != "" &&
		p.DateOfBirth != nil &&
		strings.TrimSpace(p.Phone) != "" &&
		strings.TrimSpace(p.EmergencyContactName) != "" &&
		strings.TrimSpace(p.EmergencyContactPhone) != ""
}
