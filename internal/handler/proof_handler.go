package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hkd-portal-api/internal/service"
	"github.com/noah-isme/hkd-portal-api/internal/utils"
)

// ProofHandler handles payment-proof uploads. The returned URL is what
// members attach when submitting a payment.
type ProofHandler struct {
	service service.ProofUploadService
	logger  zerolog.Logger
}

// NewProofHandler constructs a proof upload handler.
func NewProofHandler(service service.ProofUploadService, logger zerolog.Logger) *ProofHandler {
	return &ProofHandler{
		service: service,
		logger:  logger.With().Str("component", "proof_handler").Logger(),
	}
}

// Register wires the proof upload route.
func (h *ProofHandler) Register(router fiber.Router) {
	router.Post("", h.upload)
}

func (h *ProofHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.service.Upload(c.UserContext(), file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProofTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrProofTypeNotAllowed):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("proof upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "proof upload failed")
		}
	}

	return utils.SendSuccess(c, "payment proof uploaded", result)
}
