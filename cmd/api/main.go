package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hkd-portal-api/internal/config"
	"github.com/noah-isme/hkd-portal-api/internal/database"
	"github.com/noah-isme/hkd-portal-api/internal/events"
	"github.com/noah-isme/hkd-portal-api/internal/handler"
	"github.com/noah-isme/hkd-portal-api/internal/middleware"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
	"github.com/noah-isme/hkd-portal-api/internal/router"
	"github.com/noah-isme/hkd-portal-api/internal/service"
	cloud "github.com/noah-isme/hkd-portal-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// Events are best effort; the portal runs without a broker.
	var natsConn *nats.Conn
	if cfg.NATSUrl != "" {
		natsConn, err = nats.Connect(cfg.NATSUrl)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable; domain events disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}
	publisher := events.NewPublisher(natsConn, logger)

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	store := repository.NewStore(db)
	userRepo := repository.NewUserRepository(db)
	rbacRepo := repository.NewRBACRepository(db)
	profileRepo := repository.NewMemberProfileRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	authzService := service.NewAuthzService(rbacRepo, redisClient, cfg.AuthzCacheTTL, logger)
	identityService := service.NewIdentityService(userRepo, rbacRepo, logger)
	rbacAdminService := service.NewRBACAdminService(rbacRepo, authzService, validate, logger)
	applicationService := service.NewApplicationService(store, authzService, validate, publisher, logger)
	billingService := service.NewBillingService(store, authzService, validate, publisher, redisClient, cfg.FeeSummaryCacheTTL, logger)
	programService := service.NewProgramService(store, authzService, validate, publisher, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	memberService := service.NewMemberService(profileRepo, validate, logger)
	proofService := service.NewProofUploadService(uploader, cfg.ProofMaxSizeMB, logger)

	if err := rbacAdminService.EnsureDefaults(context.Background()); err != nil {
		log.Fatalf("failed to seed default roles: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:           &logger,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		ApplicationHandler: handler.NewApplicationHandler(applicationService, logger),
		FeeHandler:         handler.NewFeeHandler(billingService, logger),
		ProgramHandler:     handler.NewProgramHandler(programService, logger),
		CourseHandler:      handler.NewCourseHandler(courseService, logger),
		MemberHandler:      handler.NewMemberHandler(memberService, logger),
		RBACHandler:        handler.NewRBACHandler(rbacAdminService, logger),
		ProofHandler:       handler.NewProofHandler(proofService, logger),
		Authz:              authzService,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret, identityService),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
