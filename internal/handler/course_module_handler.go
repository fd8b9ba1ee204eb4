package handler

import (
	"errors"
	"strings"

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

// CourseModuleHandler serves the module listing, PDF uploads and the
// tutor review endpoint.
type CourseModuleHandler struct {
	service   service.CourseService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseModuleHandler constructs a course module handler.
func NewCourseModuleHandler(service service.CourseService, validator *validator.Validate, logger zerolog.Logger) *CourseModuleHandler {
	return &CourseModuleHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "course_module_handler").Logger(),
	}
}

// Register wires the module routes. The session middleware runs on the
// surrounding group; marking passed additionally requires the tutor role.
func (h *CourseModuleHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/upload", h.upload)
	router.Post("/pass", middleware.RequireRole(auth.RoleTutor), h.pass)
}

func (h *CourseModuleHandler) list(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	chapterSlug := strings.TrimSpace(c.Query("chapterSlug"))
	listing, err := h.service.ListModules(c.Context(), session, chapterSlug)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list modules")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to load modules.")
	}

	return utils.SendSuccess(c, listing)
}

func (h *CourseModuleHandler) upload(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Please upload a PDF file.")
	}

	result, err := h.service.SaveUpload(
		c.Context(),
		session,
		c.FormValue("kind"),
		c.FormValue("chapterSlug"),
		c.FormValue("section"),
		file,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingModuleDetails):
			return utils.SendError(c, fiber.StatusBadRequest, "Missing module details.")
		case errors.Is(err, service.ErrUnknownUploadKind):
			return utils.SendError(c, fiber.StatusBadRequest, "Invalid upload type.")
		case errors.Is(err, service.ErrNotPDF):
			return utils.SendError(c, fiber.StatusBadRequest, "Please upload a PDF file.")
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadRoleNotAllowed):
			if session.Role == auth.RoleStudent {
				return utils.SendError(c, fiber.StatusForbidden, "Only tutors can upload module PDFs.")
			}
			return utils.SendError(c, fiber.StatusForbidden, "Only students can submit answer PDFs.")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "Upload failed.")
		}
	}

	return utils.SendSuccess(c, result)
}

func (h *CourseModuleHandler) pass(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var payload dto.PassRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request.")
	}

	if err := h.service.MarkPassed(c.Context(), session, payload); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "Missing required fields.")
		case errors.Is(err, service.ErrMissingStudent):
			return utils.SendError(c, fiber.StatusBadRequest, "Missing student.")
		case errors.Is(err, service.ErrMissingSection):
			return utils.SendError(c, fiber.StatusBadRequest, "Missing section.")
		case errors.Is(err, repository.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "Submission not found.")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update pass state")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to update pass state.")
		}
	}

	return utils.SendSuccess(c, nil)
}
