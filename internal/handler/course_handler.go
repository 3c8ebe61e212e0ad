package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/service"
	"github.com/noah-isme/hkd-portal-api/internal/utils"
)

// CourseHandler exposes the course catalog.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register wires course routes. Mutations receive the manage guard.
func (h *CourseHandler) Register(router fiber.Router, manageGuard fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", manageGuard, h.create)
	router.Put("/:id", manageGuard, h.update)
	router.Delete("/:id", manageGuard, h.delete)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	activeOnly := strings.EqualFold(strings.TrimSpace(c.Query("active")), "true")

	result, err := h.service.List(c.UserContext(), activeOnly)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list courses")
	}
	return utils.SendSuccess(c, "courses retrieved", result)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	result, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to load course")
	}
	return utils.SendSuccess(c, "course retrieved", result)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create course")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", result)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Update(c.UserContext(), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update course")
	}
	return utils.SendSuccess(c, "course updated", result)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to delete course")
	}
	return utils.SendSuccess(c, "course deleted", nil)
}
