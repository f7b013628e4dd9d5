package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"lms/config"
	"lms/database"
	"lms/logger"
	"lms/routers"
	"lms/services"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the HTTP application with every route mounted.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 512 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.AppConfig.CorsOrigins,
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Static("/uploads", config.AppConfig.UploadDir)
	routers.SetupRoutes(app)
	return app
}

func main() {
	config.LoadConfig()
	if err := logger.Init(config.AppConfig.AppEnv); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()

	if err := database.ConnectDb(); err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	db := database.Database.Db

	if m := utils.NewSendGridMailer(config.AppConfig); m != nil {
		services.SetMailer(m)
	}
	if p := utils.NewWebhookPusher(config.AppConfig.NotifyWebhookURL); p != nil {
		services.SetPusher(p)
	}

	if config.AppConfig.SchedulerEnabled {
		scheduler, err := utils.InitializeScheduler(db)
		if err != nil {
			logger.Fatal("failed to start scheduler", "error", err)
		}
		defer scheduler.Stop()
	}

	app := NewApp()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down server")
		_ = app.Shutdown()
	}()

	logger.Info("server is running", "port", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}
