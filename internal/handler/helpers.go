package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/hkd-portal-api/internal/middleware"
	"github.com/noah-isme/hkd-portal-api/internal/service"
	"github.com/noah-isme/hkd-portal-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseParamID(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return true
	}
	var schemaError *jsonschema.ValidationError
	return errors.As(err, &schemaError)
}

var notFoundErrors = []error{
	service.ErrApplicationNotFound,
	service.ErrCourseNotFound,
	service.ErrFeeNotFound,
	service.ErrEnrollmentNotFound,
	service.ErrProgramNotFound,
	service.ErrRegistrationNotFound,
	service.ErrProfileNotFound,
	service.ErrRoleNotFound,
}

var guardErrors = []error{
	service.ErrInvalidTransition,
	service.ErrDuplicateApplication,
	service.ErrDuplicateRegistration,
	service.ErrCourseClosed,
	service.ErrCourseFull,
	service.ErrProgramClosed,
	service.ErrProgramFull,
	service.ErrProfileIncomplete,
	service.ErrInvalidIntake,
	service.ErrProofTooLarge,
	service.ErrProofTypeNotAllowed,
}

// sendServiceError translates workflow errors into the API error surface.
// Unknown errors are logged and masked behind a generic 500 message.
func sendServiceError(c *fiber.Ctx, logger *zerolog.Logger, err error, fallback string) error {
	if isValidationError(err) {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if errors.Is(err, service.ErrForbidden) {
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	}
	for _, known := range notFoundErrors {
		if errors.Is(err, known) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
	}
	for _, known := range guardErrors {
		if errors.Is(err, known) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	logger.Error().Err(err).Msg(fallback)
	return utils.SendError(c, fiber.StatusInternalServerError, fallback)
}
