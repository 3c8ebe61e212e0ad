package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/repository"
	"github.com/noah-isme/hkd-portal-api/internal/service"
	"github.com/noah-isme/hkd-portal-api/internal/utils"
)

// MemberHandler exposes member profile endpoints.
type MemberHandler struct {
	service service.MemberService
	logger  zerolog.Logger
}

// NewMemberHandler constructs a member handler.
func NewMemberHandler(service service.MemberService, logger zerolog.Logger) *MemberHandler {
	return &MemberHandler{
		service: service,
		logger:  logger.With().Str("component", "member_handler").Logger(),
	}
}

// Register wires member routes. Listing and updates are administrative.
func (h *MemberHandler) Register(router fiber.Router, manageGuard fiber.Handler) {
	router.Get("/me", h.getOwn)
	router.Get("", manageGuard, h.list)
	router.Put("/:id", manageGuard, h.update)
}

func (h *MemberHandler) getOwn(c *fiber.Ctx) error {
	result, err := h.service.GetOwn(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to load member profile")
	}
	return utils.SendSuccess(c, "member profile retrieved", result)
}

func (h *MemberHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	filter := repository.MemberProfileFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		BeltRank: strings.TrimSpace(c.Query("belt")),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list member profiles")
	}
	return utils.SendSuccess(c, "member profiles retrieved", result)
}

func (h *MemberHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid profile id")
	}

	var payload dto.MemberProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Update(c.UserContext(), id, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update member profile")
	}
	return utils.SendSuccess(c, "member profile updated", result)
}
