package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/upgrade-tuition/upgrade-api/internal/dto"
	"github.com/upgrade-tuition/upgrade-api/internal/service"
	"github.com/upgrade-tuition/upgrade-api/internal/utils"
)

// ContactHandler accepts enquiries from the marketing site.
type ContactHandler struct {
	service service.ContactService
	logger  zerolog.Logger
}

// NewContactHandler constructs a contact handler.
func NewContactHandler(service service.ContactService, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		service: service,
		logger:  logger.With().Str("component", "contact_handler").Logger(),
	}
}

// Register wires the contact route.
func (h *ContactHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
}

func (h *ContactHandler) submit(c *fiber.Ctx) error {
	var payload dto.ContactRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request.")
	}

	payload.IPAddress = c.IP()

	response, err := h.service.Submit(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContactSpam):
			// Bots get the same answer as everyone else.
			return utils.SendSuccess(c, nil)
		case errors.Is(err, service.ErrContactDuplicate):
			return utils.SendError(c, fiber.StatusTooManyRequests, "We already received this enquiry, give us a moment.")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, contactValidationMessage(err))
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to process contact enquiry")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to submit enquiry.")
		}
	}

	return utils.SendSuccess(c, response)
}

// contactValidationMessage turns the first failed field into the inline
// error the contact form renders.
func contactValidationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Invalid request."
	}

	field := validationErrors[0]
	switch strings.ToLower(field.Field()) {
	case "name":
		if field.Tag() == "required" {
			return "Name is required."
		}
	case "email":
		return "A valid email is required."
	case "level":
		return "Level is required."
	case "subject":
		if field.Tag() == "required" {
			return "Subject is required."
		}
	}
	return "Please shorten your response and try again."
}
