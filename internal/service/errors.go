package service

import "errors"

// Sentinel errors shared by the workflow services. Handlers map these onto
// the HTTP error surface: not-found → 404, forbidden → 403, everything else
// here is a guard violation → 400.
var (
	ErrForbidden = errors.New("permission denied")

	ErrApplicationNotFound  = errors.New("application not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrFeeNotFound          = errors.New("monthly fee not found")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrProgramNotFound      = errors.New("program not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrProfileNotFound      = errors.New("member profile not found")
	ErrRoleNotFound         = errors.New("role not found")

	ErrInvalidTransition     = errors.New("operation not valid in current state")
	ErrDuplicateApplication  = errors.New("an open application already exists for this course")
	ErrDuplicateRegistration = errors.New("an open registration already exists for this program")
	ErrCourseClosed          = errors.New("course is not accepting applications")
	ErrCourseFull            = errors.New("course is at capacity")
	ErrProgramClosed         = errors.New("program is not open for registration")
	ErrProgramFull           = errors.New("program is at capacity")
	ErrProfileIncomplete     = errors.New("member profile is incomplete")
	ErrInvalidIntake         = errors.New("intake payload rejected")
)
