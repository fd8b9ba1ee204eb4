package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/upgrade-tuition/upgrade-api/internal/auth"
	"github.com/upgrade-tuition/upgrade-api/internal/dto"
	"github.com/upgrade-tuition/upgrade-api/internal/middleware"
	"github.com/upgrade-tuition/upgrade-api/internal/repository"
	"github.com/upgrade-tuition/upgrade-api/internal/service"
	"github.com/upgrade-tuition/upgrade-api/internal/utils"
)

// CustomTopicHandler serves tutor-authored ad hoc topics.
type CustomTopicHandler struct {
	service   service.CourseService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCustomTopicHandler constructs a custom topic handler.
func NewCustomTopicHandler(service service.CourseService, validator *validator.Validate, logger zerolog.Logger) *CustomTopicHandler {
	return &CustomTopicHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "custom_topic_handler").Logger(),
	}
}

// Register wires the custom topic routes.
func (h *CustomTopicHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.RequireRole(auth.RoleTutor), h.manage)
}

func (h *CustomTopicHandler) list(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	topics, err := h.service.ListCustomTopics(c.Context(), session)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list custom topics")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to load topics.")
	}

	return utils.SendSuccess(c, topics)
}

func (h *CustomTopicHandler) manage(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var payload dto.CustomTopicRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request.")
	}

	topic, err := h.service.ManageCustomTopic(c.Context(), session, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "Invalid action.")
		case errors.Is(err, service.ErrTopicDetailsRequired):
			return utils.SendError(c, fiber.StatusBadRequest, "Add a title and at least one subtopic.")
		case errors.Is(err, service.ErrMissingTopicID):
			return utils.SendError(c, fiber.StatusBadRequest, "Missing topic id.")
		case errors.Is(err, repository.ErrTopicNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "Topic not found.")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to manage custom topic")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to update topic.")
		}
	}

	return utils.SendSuccess(c, topic)
}
