package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hkd-portal-api/internal/config"
	"github.com/noah-isme/hkd-portal-api/internal/handler"
	"github.com/noah-isme/hkd-portal-api/internal/middleware"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/observability"
	"github.com/noah-isme/hkd-portal-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ApplicationHandler *handler.ApplicationHandler
	FeeHandler         *handler.FeeHandler
	ProgramHandler     *handler.ProgramHandler
	CourseHandler      *handler.CourseHandler
	MemberHandler      *handler.MemberHandler
	RBACHandler        *handler.RBACHandler
	ProofHandler       *handler.ProofHandler
	Authz              service.AuthzService
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	guard := func(resource models.Resource, action models.Action) fiber.Handler {
		if deps.Authz == nil {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
		return middleware.RequirePermission(deps.Authz, resource, action)
	}

	if deps.ApplicationHandler != nil {
		applications := api.Group("/applications", jwtMiddleware)
		deps.ApplicationHandler.Register(
			applications,
			guard(models.ResourceEnrollment, models.ActionVerify),
			guard(models.ResourceEnrollment, models.ActionApprove),
		)
	}

	if deps.FeeHandler != nil {
		fees := api.Group("/fees", jwtMiddleware)
		deps.FeeHandler.Register(
			fees,
			guard(models.ResourceMonthlyFee, models.ActionManage),
			guard(models.ResourceMonthlyFee, models.ActionVerify),
		)
	}

	if deps.ProgramHandler != nil {
		programs := api.Group("/programs", jwtMiddleware)
		deps.ProgramHandler.Register(
			programs,
			guard(models.ResourceProgram, models.ActionManage),
			guard(models.ResourceProgramRegistration, models.ActionApprove),
		)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses, guard(models.ResourceCourse, models.ActionManage))
	}

	if deps.MemberHandler != nil {
		members := api.Group("/members", jwtMiddleware)
		deps.MemberHandler.Register(members, guard(models.ResourceUser, models.ActionManage))
	}

	if deps.RBACHandler != nil {
		admin := api.Group("/admin/rbac", jwtMiddleware, guard(models.ResourceUser, models.ActionManage))
		deps.RBACHandler.Register(admin)
	}

	if deps.ProofHandler != nil {
		uploads := api.Group("/uploads/payment-proof", jwtMiddleware, middleware.RateLimit("proof-upload", 10, time.Minute))
		deps.ProofHandler.Register(uploads)
	}
}
