package dto

import (
	"time"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// CourseCreateRequest defines a new course.
type CourseCreateRequest struct {
	Name             string `json:"name" validate:"required,min=3,max=255"`
	Description      string `json:"description" validate:"omitempty,max=4000"`
	DurationMonths   int    `json:"duration_months" validate:"required,gt=0,lte=60"`
	MonthlyFeeAmount int64  `json:"monthly_fee_amount" validate:"required,gt=0"`
	AdmissionFee     int64  `json:"admission_fee" validate:"gte=0"`
	Currency         string `json:"currency" validate:"omitempty,len=3"`
	MaxStudents      int    `json:"max_students" validate:"gte=0"`
}

// CourseUpdateRequest patches course fields.
type CourseUpdateRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=3,max=255"`
	Description      *string `json:"description" validate:"omitempty,max=4000"`
	MonthlyFeeAmount *int64  `json:"monthly_fee_amount" validate:"omitempty,gt=0"`
	AdmissionFee     *int64  `json:"admission_fee" validate:"omitempty,gte=0"`
	MaxStudents      *int    `json:"max_students" validate:"omitempty,gte=0"`
	Active           *bool   `json:"active"`
	EnrollmentOpen   *bool   `json:"enrollment_open"`
}

// CourseResponse is the serialized representation of a course.
type CourseResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	DurationMonths   int       `json:"duration_months"`
	MonthlyFeeAmount int64     `json:"monthly_fee_amount"`
	AdmissionFee     int64     `json:"admission_fee"`
	Currency         string    `json:"currency"`
	MaxStudents      int       `json:"max_students"`
	CurrentStudents  int       `json:"current_students"`
	Active           bool      `json:"active"`
	EnrollmentOpen   bool      `json:"enrollment_open"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:               model.ID,
		Name:             model.Name,
		Description:      model.Description,
		DurationMonths:   model.DurationMonths,
		MonthlyFeeAmount: model.MonthlyFeeAmount,
		AdmissionFee:     model.AdmissionFee,
		Currency:         model.Currency,
		MaxStudents:      model.MaxStudents,
		CurrentStudents:  model.CurrentStudents,
		Active:           model.Active,
		EnrollmentOpen:   model.EnrollmentOpen,
		CreatedAt:        model.CreatedAt,
	}
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
