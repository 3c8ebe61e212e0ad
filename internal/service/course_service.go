package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

// CourseService manages the course catalogue. Student counters are owned by
// the enrollment workflow and never touched here.
type CourseService interface {
	List(ctx context.Context, activeOnly bool) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, id uint) error
}

type courseService struct {
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, activeOnly bool) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	currency := payload.Currency
	if currency == "" {
		currency = "USD"
	}

	course := models.Course{
		Name:             payload.Name,
		Description:      payload.Description,
		DurationMonths:   payload.DurationMonths,
		MonthlyFeeAmount: payload.MonthlyFeeAmount,
		AdmissionFee:     payload.AdmissionFee,
		Currency:         currency,
		MaxStudents:      payload.MaxStudents,
		Active:           true,
		EnrollmentOpen:   true,
	}
	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Str("name", course.Name).Msg("course created")
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if payload.Name != nil {
		course.Name = *payload.Name
	}
	if payload.Description != nil {
		course.Description = *payload.Description
	}
	if payload.MonthlyFeeAmount != nil {
		course.MonthlyFeeAmount = *payload.MonthlyFeeAmount
	}
	if payload.AdmissionFee != nil {
		course.AdmissionFee = *payload.AdmissionFee
	}
	if payload.MaxStudents != nil {
		course.MaxStudents = *payload.MaxStudents
	}
	if payload.Active != nil {
		course.Active = *payload.Active
	}
	if payload.EnrollmentOpen != nil {
		course.EnrollmentOpen = *payload.EnrollmentOpen
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, id uint) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	return nil
}
