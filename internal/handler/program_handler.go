package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
	"github.com/noah-isme/hkd-portal-api/internal/service"
	"github.com/noah-isme/hkd-portal-api/internal/utils"
)

// ProgramHandler exposes programs and their registration workflow.
type ProgramHandler struct {
	service service.ProgramService
	logger  zerolog.Logger
}

// NewProgramHandler constructs a program handler.
func NewProgramHandler(service service.ProgramService, logger zerolog.Logger) *ProgramHandler {
	return &ProgramHandler{
		service: service,
		logger:  logger.With().Str("component", "program_handler").Logger(),
	}
}

// Register wires program and registration routes.
func (h *ProgramHandler) Register(router fiber.Router, manageGuard, reviewGuard fiber.Handler) {
	router.Get("", h.listPrograms)
	router.Post("", manageGuard, h.createProgram)
	router.Put("/:id", manageGuard, h.updateProgram)
	router.Post("/:id/registrations", h.register)

	router.Get("/registrations", h.listRegistrations)
	router.Put("/registrations/:id/status", reviewGuard, h.updateRegistrationStatus)
	router.Delete("/registrations/:id", h.deleteRegistration)
}

func (h *ProgramHandler) listPrograms(c *fiber.Ctx) error {
	openOnly := strings.EqualFold(strings.TrimSpace(c.Query("open")), "true")

	result, err := h.service.ListPrograms(c.UserContext(), openOnly)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list programs")
	}
	return utils.SendSuccess(c, "programs retrieved", result)
}

func (h *ProgramHandler) createProgram(c *fiber.Ctx) error {
	var payload dto.ProgramCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.CreateProgram(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create program")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "program created", result)
}

func (h *ProgramHandler) updateProgram(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid program id")
	}

	var payload dto.ProgramUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.UpdateProgram(c.UserContext(), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update program")
	}
	return utils.SendSuccess(c, "program updated", result)
}

func (h *ProgramHandler) register(c *fiber.Ctx) error {
	programID, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid program id")
	}

	var payload dto.RegistrationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Register(c.UserContext(), userIDFromContext(c), programID, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to register for program")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registration created", result)
}

func (h *ProgramHandler) listRegistrations(c *fiber.Ctx) error {
	programID, err := parseQueryInt(c, "program_id")
	if err != nil || programID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid program id")
	}
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	filter := repository.RegistrationFilter{
		ProgramID: uint(programID),
		Status:    models.RegistrationStatus(strings.TrimSpace(c.Query("status"))),
		Page:      page,
		PageSize:  pageSize,
	}

	result, err := h.service.ListRegistrations(c.UserContext(), userIDFromContext(c), filter)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list registrations")
	}
	return utils.SendSuccess(c, "registrations retrieved", result)
}

func (h *ProgramHandler) updateRegistrationStatus(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid registration id")
	}

	var payload dto.RegistrationStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.UpdateRegistrationStatus(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to review registration")
	}
	return utils.SendSuccess(c, "registration reviewed", result)
}

func (h *ProgramHandler) deleteRegistration(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid registration id")
	}

	if err := h.service.DeleteRegistration(c.UserContext(), userIDFromContext(c), id); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to delete registration")
	}
	return utils.SendSuccess(c, "registration deleted", nil)
}
