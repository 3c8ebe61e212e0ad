package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/models"
	"github.com/noah-isme/hkd-portal-api/internal/service"
	"github.com/noah-isme/hkd-portal-api/internal/utils"
)

// ApplicationHandler exposes the enrollment application workflow.
type ApplicationHandler struct {
	service service.ApplicationService
	logger  zerolog.Logger
}

// NewApplicationHandler constructs an application handler.
func NewApplicationHandler(service service.ApplicationService, logger zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service: service,
		logger:  logger.With().Str("component", "application_handler").Logger(),
	}
}

// Register wires the application routes. Reviewer transitions receive their
// permission guards at the router level.
func (h *ApplicationHandler) Register(router fiber.Router, verifyGuard, reviewGuard fiber.Handler) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Post("/:id/payment", h.submitPayment)
	router.Post("/:id/cancel", h.cancel)
	router.Post("/:id/verify-payment", verifyGuard, h.verifyPayment)
	router.Post("/:id/approve", reviewGuard, h.approve)
	router.Post("/:id/reject", reviewGuard, h.reject)
}

func (h *ApplicationHandler) create(c *fiber.Ctx) error {
	var payload dto.ApplicationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create application")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application created", result)
}

func (h *ApplicationHandler) list(c *fiber.Ctx) error {
	courseID, err := parseQueryInt(c, "course_id")
	if err != nil || courseID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	filter := dto.ApplicationFilterRequest{
		CourseID: uint(courseID),
		Status:   models.ApplicationStatus(strings.TrimSpace(c.Query("status"))),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.service.List(c.UserContext(), userIDFromContext(c), filter)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list applications")
	}
	return utils.SendSuccess(c, "applications retrieved", result)
}

func (h *ApplicationHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	result, err := h.service.Get(c.UserContext(), userIDFromContext(c), id)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to load application")
	}
	return utils.SendSuccess(c, "application retrieved", result)
}

func (h *ApplicationHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	var payload dto.ApplicationUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.UpdateInfo(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update application")
	}
	return utils.SendSuccess(c, "application updated", result)
}

func (h *ApplicationHandler) submitPayment(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	var payload dto.PaymentSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.SubmitPayment(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to submit payment")
	}
	return utils.SendSuccess(c, "payment submitted", result)
}

func (h *ApplicationHandler) verifyPayment(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	var payload dto.PaymentVerifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.VerifyPayment(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to verify payment")
	}
	return utils.SendSuccess(c, "payment verified", result)
}

func (h *ApplicationHandler) approve(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	var payload dto.ApplicationApproveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Approve(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to approve application")
	}
	return utils.SendSuccess(c, "application approved", result)
}

func (h *ApplicationHandler) reject(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	var payload dto.ApplicationRejectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Reject(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to reject application")
	}
	return utils.SendSuccess(c, "application rejected", result)
}

func (h *ApplicationHandler) cancel(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	result, err := h.service.Cancel(c.UserContext(), userIDFromContext(c), id)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to cancel application")
	}
	return utils.SendSuccess(c, "application cancelled", result)
}
