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

// FeeHandler exposes the monthly billing workflow.
type FeeHandler struct {
	service service.BillingService
	logger  zerolog.Logger
}

// NewFeeHandler constructs a fee handler.
func NewFeeHandler(service service.BillingService, logger zerolog.Logger) *FeeHandler {
	return &FeeHandler{
		service: service,
		logger:  logger.With().Str("component", "fee_handler").Logger(),
	}
}

// Register wires the fee routes. Generation, overdue marking and waiving are
// administrative and receive the manage guard; verification its own guard.
func (h *FeeHandler) Register(router fiber.Router, manageGuard, verifyGuard fiber.Handler) {
	router.Get("", h.list)
	router.Get("/summary", h.summary)
	router.Get("/:id", h.get)
	router.Post("/generate", manageGuard, h.generate)
	router.Post("/:id/payment", h.submitPayment)
	router.Post("/:id/verify-payment", verifyGuard, h.verifyPayment)
	router.Post("/:id/waive", manageGuard, h.waive)
	router.Post("/:id/overdue", manageGuard, h.markOverdue)
}

func (h *FeeHandler) generate(c *fiber.Ctx) error {
	var payload dto.FeeGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Generate(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to generate fees")
	}
	return utils.SendSuccess(c, "fee generation completed", result)
}

func (h *FeeHandler) list(c *fiber.Ctx) error {
	enrollmentID, err := parseQueryInt(c, "enrollment_id")
	if err != nil || enrollmentID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid enrollment id")
	}
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	filter := dto.FeeFilterRequest{
		EnrollmentID: uint(enrollmentID),
		Period:       strings.TrimSpace(c.Query("period")),
		Status:       models.FeeStatus(strings.TrimSpace(c.Query("status"))),
		Page:         page,
		PageSize:     pageSize,
	}

	result, err := h.service.List(c.UserContext(), userIDFromContext(c), filter)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list fees")
	}
	return utils.SendSuccess(c, "fees retrieved", result)
}

func (h *FeeHandler) summary(c *fiber.Ctx) error {
	result, err := h.service.Summary(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to build fee summary")
	}
	return utils.SendSuccess(c, "fee summary retrieved", result)
}

func (h *FeeHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fee id")
	}

	result, err := h.service.Get(c.UserContext(), userIDFromContext(c), id)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to load fee")
	}
	return utils.SendSuccess(c, "fee retrieved", result)
}

func (h *FeeHandler) submitPayment(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fee id")
	}

	var payload dto.FeePaymentSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.SubmitPayment(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to submit fee payment")
	}
	return utils.SendSuccess(c, "fee payment submitted", result)
}

func (h *FeeHandler) verifyPayment(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fee id")
	}

	var payload dto.FeePaymentVerifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.VerifyPayment(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to verify fee payment")
	}
	return utils.SendSuccess(c, "fee payment verified", result)
}

func (h *FeeHandler) waive(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fee id")
	}

	var payload dto.FeeWaiveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Waive(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to waive fee")
	}
	return utils.SendSuccess(c, "fee waived", result)
}

func (h *FeeHandler) markOverdue(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fee id")
	}

	result, err := h.service.MarkOverdue(c.UserContext(), userIDFromContext(c), id)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to mark fee overdue")
	}
	return utils.SendSuccess(c, "fee marked overdue", result)
}
