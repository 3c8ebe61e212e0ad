package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/models"
)

// Partial unique indexes backing the single-open-record invariants.
// AutoMigrate cannot express a WHERE clause, so they are applied as raw
// statements after the table sweep. Both postgres and sqlite accept them.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_open_application_per_course
		ON enrollment_applications (user_id, course_id)
		WHERE status IN ('pending_payment', 'payment_submitted', 'payment_verified')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_open_registration_per_program
		ON program_registrations (user_id, program_id)
		WHERE status = 'pending_payment'`,
}

// Migrate brings the schema up to date: every portal table plus the partial
// unique indexes that enforce at most one open application per (user, course)
// and one open registration per (user, program) under concurrent writers.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.RoleAssignment{},
		&models.MemberProfile{},
		&models.Course{},
		&models.EnrollmentApplication{},
		&models.CourseEnrollment{},
		&models.MonthlyFee{},
		&models.Program{},
		&models.ProgramRegistration{},
		&models.Sequence{},
	); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create partial index: %w", err)
		}
	}
	return nil
}
