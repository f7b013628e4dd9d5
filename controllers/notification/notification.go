package notificationController

import (
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/services"
	notificationValidator "lms/validators/notification"

	"github.com/gofiber/fiber/v2"
)

func ListNotifications(c *fiber.Ctx) error {
	var items []models.Notification
	if err := database.Database.Db.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully.", items)
}

func GetNotification(c *fiber.Ctx) error {
	var n models.Notification
	if err := database.Database.Db.First(&n, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Notification not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification fetched successfully.", n)
}

func DeleteNotification(c *fiber.Ctx) error {
	res := database.Database.Db.Delete(&models.Notification{}, c.Locals("id").(uint))
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Notification not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification deleted successfully.", nil)
}

func SendNotification(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedNotification").(*notificationValidator.SendRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	n, err := services.SendNotification(database.Database.Db, services.SendRequest{
		Title:       reqData.Title,
		Message:     reqData.Message,
		Type:        reqData.Type,
		SendToAll:   reqData.SendToAll,
		UserIDs:     reqData.UserIDs,
		ScheduledAt: reqData.ScheduledAt,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if n.Status == models.NotificationStatusScheduled {
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Notification scheduled.", n)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Notification sent.", n)
}

func NotificationStats(c *fiber.Ctx) error {
	stats, err := services.GetNotificationStats(database.Database.Db, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification stats fetched successfully.", stats)
}

func MyNotifications(c *fiber.Ctx) error {
	unreadOnly := false
	if q, _ := c.Locals("validatedQuery").(*notificationValidator.MyNotificationsQuery); q != nil {
		unreadOnly = q.UnreadOnly
	}
	items, err := services.MyNotifications(database.Database.Db, middleware.CurrentUser(c).ID, unreadOnly)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully.", items)
}

func UnreadCount(c *fiber.Ctx) error {
	count, err := services.UnreadCount(database.Database.Db, middleware.CurrentUser(c).ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unread count fetched successfully.", fiber.Map{"unread_count": count})
}

func MarkAsRead(c *fiber.Ctx) error {
	if err := services.MarkAsRead(database.Database.Db, middleware.CurrentUser(c).ID, c.Locals("id").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification marked as read.", nil)
}

func MarkAllRead(c *fiber.Ctx) error {
	count, err := services.MarkAllRead(database.Database.Db, middleware.CurrentUser(c).ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "All notifications marked as read.", fiber.Map{"updated": count})
}
