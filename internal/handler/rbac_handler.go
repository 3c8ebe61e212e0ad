package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
	"github.com/noah-isme/hkd-portal-api/internal/service"
	"github.com/noah-isme/hkd-portal-api/internal/utils"
)

// RBACHandler exposes role and permission administration.
type RBACHandler struct {
	service service.RBACAdminService
	logger  zerolog.Logger
}

// NewRBACHandler constructs an RBAC admin handler.
func NewRBACHandler(service service.RBACAdminService, logger zerolog.Logger) *RBACHandler {
	return &RBACHandler{
		service: service,
		logger:  logger.With().Str("component", "rbac_handler").Logger(),
	}
}

// Register wires the RBAC admin routes. The whole group is expected to sit
// behind a user-management permission guard.
func (h *RBACHandler) Register(router fiber.Router) {
	router.Get("/roles", h.listRoles)
	router.Post("/roles", h.createRole)
	router.Post("/grants", h.grant)
	router.Delete("/grants", h.revoke)
	router.Post("/assignments", h.assignRole)
	router.Delete("/assignments", h.revokeRole)
}

func (h *RBACHandler) listRoles(c *fiber.Ctx) error {
	result, err := h.service.ListRoles(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list roles")
	}
	return utils.SendSuccess(c, "roles retrieved", result)
}

func (h *RBACHandler) createRole(c *fiber.Ctx) error {
	var payload dto.RoleCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.CreateRole(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create role")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "role created", result)
}

func (h *RBACHandler) grant(c *fiber.Ctx) error {
	var payload dto.PermissionGrantRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Grant(c.UserContext(), payload); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to grant permission")
	}
	return utils.SendSuccess(c, "permission granted", nil)
}

func (h *RBACHandler) revoke(c *fiber.Ctx) error {
	var payload dto.PermissionGrantRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Revoke(c.UserContext(), payload); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to revoke permission")
	}
	return utils.SendSuccess(c, "permission revoked", nil)
}

func (h *RBACHandler) assignRole(c *fiber.Ctx) error {
	var payload dto.RoleAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.AssignRole(c.UserContext(), userIDFromContext(c), payload); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to assign role")
	}
	return utils.SendSuccess(c, "role assigned", nil)
}

func (h *RBACHandler) revokeRole(c *fiber.Ctx) error {
	var payload dto.RoleAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.RevokeRole(c.UserContext(), payload); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to revoke role")
	}
	return utils.SendSuccess(c, "role revoked", nil)
}
