package models

import "time"

// CourseEnrollment is the active relationship between a member and a course.
// It is created only by approving exactly one enrollment application. The
// monthly fee amount is locked in at approval time so later course price
// changes do not affect running enrollments.
type CourseEnrollment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ApplicationID    uint      `gorm:"not null;uniqueIndex" json:"application_id"`
	MemberProfileID  uint      `gorm:"not null;index" json:"member_profile_id"`
	CourseID         uint      `gorm:"not null;index" json:"course_id"`
	StartDate        time.Time `gorm:"not null" json:"start_date"`
	ExpectedEndDate  time.Time `gorm:"not null" json:"expected_end_date"`
	MonthlyFeeAmount int64     `gorm:"not null" json:"monthly_fee_amount"`
	Currency         string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Active           bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Course Course `gorm:"constraint:OnUpdate:CASCADE" json:"course"`
}
