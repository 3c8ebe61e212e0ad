package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/hkd-portal-api/internal/database"
	"github.com/noah-isme/hkd-portal-api/internal/events"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
)

func setupStore(t *testing.T) (repository.Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return repository.NewStore(db), db
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func testPublisher() *events.Publisher {
	return events.NewPublisher(nil, testLogger())
}

// grantPermission gives the user a dedicated role carrying one permission.
func grantPermission(t *testing.T, db *gorm.DB, userID uint, resource models.Resource, action models.Action) {
	t.Helper()
	ctx := context.Background()
	rbac := repository.NewRBACRepository(db)

	roleName := fmt.Sprintf("test-%d-%s-%s", userID, resource, action)
	role := models.Role{Name: roleName, Active: true}
	require.NoError(t, rbac.CreateRole(ctx, &role))

	permission, err := rbac.EnsurePermission(ctx, resource, action)
	require.NoError(t, err)
	require.NoError(t, rbac.GrantPermission(ctx, role.ID, permission.ID))
	require.NoError(t, rbac.AssignRole(ctx, userID, role.ID, 1))
}

func newTestAuthz(db *gorm.DB) AuthzService {
	return NewAuthzService(repository.NewRBACRepository(db), nil, time.Minute, testLogger())
}

func seedOpenCourse(t *testing.T, store repository.Store, maxStudents int) models.Course {
	t.Helper()
	course := models.Course{
		Name:             "Hapkido Fundamentals",
		DurationMonths:   6,
		MonthlyFeeAmount: 5000,
		AdmissionFee:     10000,
		Currency:         "USD",
		MaxStudents:      maxStudents,
		Active:           true,
		EnrollmentOpen:   true,
	}
	require.NoError(t, store.Courses().Create(context.Background(), &course))
	return course
}

func seedCompleteProfile(t *testing.T, store repository.Store, userID uint) models.MemberProfile {
	t.Helper()
	dob := time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC)
	profile := models.MemberProfile{
		UserID:                userID,
		MemberNumber:          fmt.Sprintf("HKD-M-2026-%04d", userID),
		FullName:              "Jin Seo",
		DateOfBirth:           &dob,
		Phone:                 "+1-555-0100",
		Address:               "12 Dojang Way",
		EmergencyContactName:  "Min Seo",
		EmergencyContactPhone: "+1-555-0101",
		BeltRank:              "white",
	}
	require.NoError(t, store.Profiles().Create(context.Background(), &profile))
	return profile
}

const validIntake = `{
	"full_name": "Jin Seo",
	"date_of_birth": "1995-04-12",
	"phone": "+1-555-0100",
	"address": "12 Dojang Way, Springfield",
	"emergency_contact_name": "Min Seo",
	"emergency_contact_phone": "+1-555-0101",
	"liability_waiver_accepted": true,
	"terms_accepted": true
}`
