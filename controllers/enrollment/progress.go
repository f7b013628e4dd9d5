package enrollmentController

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	enrollmentValidator "lms/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

func MyProgress(c *fiber.Ctx) error {
	progress, err := services.MyProgress(database.Database.Db, middleware.CurrentUser(c).ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully.", progress)
}

func CompleteVideo(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedComplete").(*enrollmentValidator.CompleteVideoRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	progress, err := services.CompleteVideo(database.Database.Db, middleware.CurrentUser(c).ID, reqData.VideoID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video marked as completed.", progress)
}

func CompleteTask(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedComplete").(*enrollmentValidator.CompleteTaskRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	progress, err := services.CompleteTask(database.Database.Db, middleware.CurrentUser(c).ID, reqData.TaskID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task marked as completed.", progress)
}

func UserProgress(c *fiber.Ctx) error {
	q, ok := c.Locals("validatedQuery").(*enrollmentValidator.UserQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	progress, err := services.UserProgress(database.Database.Db, q.UserID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully.", progress)
}

func ListProgress(c *fiber.Ctx) error {
	var items []courseModels.StudentProgress
	if err := database.Database.Db.Order("user_id").Find(&items).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully.", items)
}
