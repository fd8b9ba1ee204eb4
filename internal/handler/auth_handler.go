package handler

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/upgrade-tuition/upgrade-api/internal/auth"
	"github.com/upgrade-tuition/upgrade-api/internal/dto"
	"github.com/upgrade-tuition/upgrade-api/internal/middleware"
	"github.com/upgrade-tuition/upgrade-api/internal/utils"
)

// AuthHandler manages sign-in, sign-out and session introspection.
type AuthHandler struct {
	sessions   *auth.Manager
	validator  *validator.Validate
	logger     zerolog.Logger
	production bool
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(sessions *auth.Manager, validator *validator.Validate, production bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:   sessions,
		validator:  validator,
		logger:     logger.With().Str("component", "auth_handler").Logger(),
		production: production,
	}
}

// Register wires the auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
	router.Post("/logout", h.logout)
	router.Get("/session", h.session)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request.")
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || !strings.Contains(email, "@") {
		return utils.SendError(c, fiber.StatusBadRequest, "A valid email is required.")
	}
	if !auth.IsValidPasswordFormat(payload.Password) {
		return utils.SendError(c, fiber.StatusBadRequest, "Password must be at least 8 characters with an uppercase letter, a lowercase letter and a number.")
	}
	role, ok := auth.ParseRole(payload.Role)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid role.")
	}
	if !h.sessions.VerifyCredentials(role, email, payload.Password) {
		return utils.SendError(c, fiber.StatusUnauthorized, "Invalid credentials.")
	}

	token, expiresAt, err := h.sessions.IssueToken(role, email)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to issue session token")
		return utils.SendError(c, fiber.StatusInternalServerError, "Sign-in failed.")
	}

	h.setSessionCookie(c, token, expiresAt)
	requestLogger(h.logger, c).Info().Str("role", role.String()).Msg("session created")

	return utils.SendSuccess(c, dto.SessionResponse{
		Role:      role.String(),
		Email:     email,
		ExpiresAt: expiresAt.UnixMilli(),
	})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	h.clearSessionCookie(c)
	return utils.SendSuccess(c, nil)
}

func (h *AuthHandler) session(c *fiber.Ctx) error {
	token := c.Cookies(auth.SessionCookieName)
	if token == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	session := h.sessions.ParseToken(token)
	if session == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	return utils.SendSuccess(c, dto.SessionResponse{
		Role:      session.Role.String(),
		Email:     session.Email,
		ExpiresAt: session.Exp,
	})
}

// QuickLearn reports whether the signed-in student is on the QuickLearn
// plan allow-list.
func (h *AuthHandler) QuickLearn(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	return utils.SendSuccess(c, dto.QuickLearnResponse{
		Enabled: h.sessions.HasQuickLearnAccess(session.Email),
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
