package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/upgrade-tuition/upgrade-api/internal/auth"
	"github.com/upgrade-tuition/upgrade-api/internal/config"
	"github.com/upgrade-tuition/upgrade-api/internal/database"
	"github.com/upgrade-tuition/upgrade-api/internal/handler"
	"github.com/upgrade-tuition/upgrade-api/internal/middleware"
	"github.com/upgrade-tuition/upgrade-api/internal/repository"
	"github.com/upgrade-tuition/upgrade-api/internal/router"
	"github.com/upgrade-tuition/upgrade-api/internal/service"
	"github.com/upgrade-tuition/upgrade-api/pkg/filestore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	sessions := auth.NewManager(auth.Config{
		Secret:           cfg.SessionSecret,
		Student:          auth.Credentials{Email: cfg.StudentEmail, Password: cfg.StudentPassword},
		Tutor:            auth.Credentials{Email: cfg.TutorEmail, Password: cfg.TutorPassword},
		QuickLearnEmails: cfg.QuickLearnEmails,
	}, logger)

	courseRepo, err := repository.NewFileCourseRepository(cfg.StorePath, logger)
	if err != nil {
		log.Fatalf("failed to open course store: %v", err)
	}

	files, err := filestore.New(filestore.Config{
		Dir:          cfg.UploadDir,
		PublicPrefix: cfg.PublicPrefix,
	}, logger)
	if err != nil {
		log.Fatalf("failed to prepare upload directory: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	uploadService := service.NewUploadService(files, cfg.UploadMaxMB, logger)
	courseService := service.NewCourseService(courseRepo, uploadService, validate, logger)
	contactService := service.NewContactService(redisClient, validate, service.NewLogContactDelivery(logger), logger)

	authHandler := handler.NewAuthHandler(sessions, validate, cfg.IsProduction(), logger)
	courseModuleHandler := handler.NewCourseModuleHandler(courseService, validate, logger)
	customTopicHandler := handler.NewCustomTopicHandler(courseService, validate, logger)
	contactHandler := handler.NewContactHandler(contactService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         authHandler,
		CourseModuleHandler: courseModuleHandler,
		CustomTopicHandler:  customTopicHandler,
		ContactHandler:      contactHandler,
		SessionMiddleware:   middleware.SessionProtected(sessions),
		UploadDir:           files.Dir(),
		UploadPublicPrefix:  files.PublicPrefix(),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
