package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNoCapacity indicates a guarded counter increment found the resource
// full. Callers translate this into a capacity guard violation.
var ErrNoCapacity = errors.New("capacity exhausted")

// Store bundles every repository behind one handle so multi-record writes
// can share a transaction. Atomic runs fn against a Store bound to a single
// database transaction; if fn returns an error every write inside it is
// rolled back.
type Store interface {
	Users() UserRepository
	RBAC() RBACRepository
	Profiles() MemberProfileRepository
	Courses() CourseRepository
	Applications() ApplicationRepository
	Enrollments() EnrollmentRepository
	Fees() MonthlyFeeRepository
	Programs() ProgramRepository
	Registrations() RegistrationRepository
	Sequences() SequenceRepository
	Atomic(ctx context.Context, fn func(Store) error) error
}

type gormStore struct {
	db            *gorm.DB
	users         UserRepository
	rbac          RBACRepository
	profiles      MemberProfileRepository
	courses       CourseRepository
	applications  ApplicationRepository
	enrollments   EnrollmentRepository
	fees          MonthlyFeeRepository
	programs      ProgramRepository
	registrations RegistrationRepository
	sequences     SequenceRepository
}

// NewStore builds a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:            db,
		users:         NewUserRepository(db),
		rbac:          NewRBACRepository(db),
		profiles:      NewMemberProfileRepository(db),
		courses:       NewCourseRepository(db),
		applications:  NewApplicationRepository(db),
		enrollments:   NewEnrollmentRepository(db),
		fees:          NewMonthlyFeeRepository(db),
		programs:      NewProgramRepository(db),
		registrations: NewRegistrationRepository(db),
		sequences:     NewSequenceRepository(db),
	}
}

func (s *gormStore) Users() UserRepository                 { return s.users }
func (s *gormStore) RBAC() RBACRepository                  { return s.rbac }
func (s *gormStore) Profiles() MemberProfileRepository     { return s.profiles }
func (s *gormStore) Courses() CourseRepository             { return s.courses }
func (s *gormStore) Applications() ApplicationRepository   { return s.applications }
func (s *gormStore) Enrollments() EnrollmentRepository     { return s.enrollments }
func (s *gormStore) Fees() MonthlyFeeRepository            { return s.fees }
func (s *gormStore) Programs() ProgramRepository           { return s.programs }
func (s *gormStore) Registrations() RegistrationRepository { return s.registrations }
func (s *gormStore) Sequences() SequenceRepository         { return s.sequences }

func (s *gormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
