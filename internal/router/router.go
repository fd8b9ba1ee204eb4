package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/upgrade-tuition/upgrade-api/internal/auth"
	"github.com/upgrade-tuition/upgrade-api/internal/config"
	"github.com/upgrade-tuition/upgrade-api/internal/handler"
	"github.com/upgrade-tuition/upgrade-api/internal/middleware"
	"github.com/upgrade-tuition/upgrade-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	CourseModuleHandler *handler.CourseModuleHandler
	CustomTopicHandler  *handler.CustomTopicHandler
	ContactHandler      *handler.ContactHandler
	SessionMiddleware   fiber.Handler
	UploadDir           string
	UploadPublicPrefix  string
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided session middleware, or a no-op if nil
	sessionMiddleware := deps.SessionMiddleware
	if sessionMiddleware == nil {
		sessionMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		authGroup := app.Group("/api/auth")
		deps.AuthHandler.Register(authGroup)

		quickLearn := app.Group("/api/course/quick-learn", sessionMiddleware, middleware.RequireRole(auth.RoleStudent))
		quickLearn.Get("", deps.AuthHandler.QuickLearn)
	}

	if deps.CourseModuleHandler != nil {
		moduleGroup := app.Group("/api/course/module", sessionMiddleware)
		deps.CourseModuleHandler.Register(moduleGroup)
	}

	if deps.CustomTopicHandler != nil {
		topicGroup := app.Group("/api/course/custom-topic", sessionMiddleware)
		deps.CustomTopicHandler.Register(topicGroup)
	}

	if deps.ContactHandler != nil {
		contactGroup := app.Group("/api/contact", middleware.RateLimit("contact", cfg.ContactRPM, time.Minute))
		deps.ContactHandler.Register(contactGroup)
	}

	// Uploaded PDFs are served straight from the public directory.
	if deps.UploadDir != "" {
		prefix := deps.UploadPublicPrefix
		if prefix == "" {
			prefix = "/course-files"
		}
		app.Static(prefix, deps.UploadDir)
	}
}
