package notificationRoutes

import (
	controllers "lms/controllers/notification"
	"lms/middleware"
	"lms/validators"
	notificationValidators "lms/validators/notification"

	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(api fiber.Router) {
	id := validators.ParamID()

	adminGroup := api.Group("/notifications", middleware.JWTMiddleware, middleware.AdminOnly)
	adminGroup.Get("/stats", controllers.NotificationStats)
	adminGroup.Post("/send-notification", notificationValidators.Send(), controllers.SendNotification)
	adminGroup.Get("/", controllers.ListNotifications)
	adminGroup.Get("/:id", id, controllers.GetNotification)
	adminGroup.Delete("/:id", id, controllers.DeleteNotification)

	userGroup := api.Group("/user-notifications", middleware.JWTMiddleware)
	userGroup.Get("/my-notifications", notificationValidators.MyNotifications(), controllers.MyNotifications)
	userGroup.Get("/unread-count", controllers.UnreadCount)
	userGroup.Post("/mark-all-read", controllers.MarkAllRead)
	userGroup.Post("/:id/mark-as-read", id, controllers.MarkAsRead)
}
