package routers

import (
	"lms/routers/authRoutes"
	"lms/routers/courseRoutes"
	"lms/routers/enrollmentRoutes"
	"lms/routers/notificationRoutes"
	"lms/routers/paymentRoutes"
	"lms/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts every API group under /api.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	authRoutes.SetupAuthRoutes(api)
	userRoutes.SetupUserRoutes(api)
	courseRoutes.SetupCourseRoutes(api)
	enrollmentRoutes.SetupEnrollmentRoutes(api)
	paymentRoutes.SetupPaymentRoutes(api)
	notificationRoutes.SetupNotificationRoutes(api)
}
