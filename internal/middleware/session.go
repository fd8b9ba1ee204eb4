package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/upgrade-tuition/upgrade-api/internal/auth"
	"github.com/upgrade-tuition/upgrade-api/internal/utils"
)

// Locals keys populated by SessionProtected.
const (
	LocalsSession   = "session"
	LocalsUserRole  = "user_role"
	LocalsUserEmail = "user_email"
)

// SessionProtected validates the signed session cookie and stores the
// decoded session in request locals. Any invalid, expired or tampered
// token yields the same 401 as a missing one.
func SessionProtected(sessions *auth.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(auth.SessionCookieName)
		if token == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		session := sessions.ParseToken(token)
		if session == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		c.Locals(LocalsSession, *session)
		c.Locals(LocalsUserRole, session.Role.String())
		c.Locals(LocalsUserEmail, session.Email)

		return c.Next()
	}
}

// SessionFromContext returns the session stored by SessionProtected.
func SessionFromContext(c *fiber.Ctx) (auth.Session, bool) {
	session, ok := c.Locals(LocalsSession).(auth.Session)
	return session, ok
}
