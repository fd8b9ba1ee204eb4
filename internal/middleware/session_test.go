package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/upgrade-tuition/upgrade-api/internal/auth"
	"github.com/upgrade-tuition/upgrade-api/internal/middleware"
	"github.com/upgrade-tuition/upgrade-api/internal/utils"
)

func newSessionManager(t *testing.T) *auth.Manager {
	t.Helper()

	return auth.NewManager(auth.Config{
		Secret:  "middleware-test-secret-0123456789abc",
		Student: auth.Credentials{Email: "student@example.com", Password: "Student123"},
		Tutor:   auth.Credentials{Email: "tutor@example.com", Password: "Tutor1234"},
	}, zerolog.New(io.Discard))
}

func protectedApp(sessions *auth.Manager, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{middleware.SessionProtected(sessions)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		session, ok := middleware.SessionFromContext(c)
		if !ok {
			return utils.SendError(c, fiber.StatusInternalServerError, "session missing")
		}
		return utils.SendSuccess(c, session.Email)
	})
	app.Get("/protected", handlers...)
	return app
}

func TestSessionProtectedRejectsMissingCookie(t *testing.T) {
	app := protectedApp(newSessionManager(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionProtectedRejectsInvalidToken(t *testing.T) {
	app := protectedApp(newSessionManager(t))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage.token"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionProtectedAcceptsValidToken(t *testing.T) {
	sessions := newSessionManager(t)
	app := protectedApp(sessions)

	token, _, err := sessions.IssueToken(auth.RoleStudent, "student@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	sessions := newSessionManager(t)
	app := protectedApp(sessions, middleware.RequireRole(auth.RoleTutor))

	studentToken, _, err := sessions.IssueToken(auth.RoleStudent, "student@example.com")
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: studentToken})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	tutorToken, _, err := sessions.IssueToken(auth.RoleTutor, "tutor@example.com")
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: tutorToken})
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleWithoutSession(t *testing.T) {
	app := fiber.New()
	app.Get("/tutor-only", middleware.RequireRole(auth.RoleTutor), func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, nil)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/tutor-only", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
