package models

import "time"

// Course is a recurring training class students enroll into. Monetary
// amounts are stored in minor units (cents).
type Course struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	DurationMonths   int       `gorm:"not null" json:"duration_months"`
	MonthlyFeeAmount int64     `gorm:"not null" json:"monthly_fee_amount"`
	AdmissionFee     int64     `gorm:"not null;default:0" json:"admission_fee"`
	Currency         string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	MaxStudents      int       `gorm:"not null;default:0" json:"max_students"`
	CurrentStudents  int       `gorm:"not null;default:0" json:"current_students"`
	Active           bool      `gorm:"not null;default:true" json:"active"`
	EnrollmentOpen   bool      `gorm:"not null;default:true" json:"enrollment_open"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AcceptsApplications reports whether new enrollment applications may target
// this course. Capacity is enforced separately, at approval time.
func (c Course) AcceptsApplications() bool {
	return c.Active && c.EnrollmentOpen
}
