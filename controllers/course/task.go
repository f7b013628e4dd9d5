package controllers

import (
	"lms/database"
	"lms/logger"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	"lms/utils"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order, id")
}

func ListTasks(c *fiber.Ctx) error {
	db := database.Database.Db.Preload("Questions", orderedQuestions)
	if q, _ := c.Locals("validatedQuery").(*courseValidator.VideoQuery); q != nil && q.VideoID != 0 {
		db = db.Where("video_id = ?", q.VideoID)
	}
	var tasks []courseModels.Task
	if err := db.Order("video_id, id").Find(&tasks).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tasks fetched successfully.", tasks)
}

// TasksByVideo is ListTasks with a mandatory video_id.
func TasksByVideo(c *fiber.Ctx) error {
	return ListTasks(c)
}

func GetTask(c *fiber.Ctx) error {
	task, err := services.LoadTask(database.Database.Db, c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task fetched successfully.", task)
}

func CreateTask(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTask").(*courseValidator.TaskRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	taskType, _ := courseModels.ParseTaskType(reqData.TaskType)
	task := courseModels.Task{
		VideoID:           reqData.VideoID,
		Title:             reqData.Title,
		Description:       reqData.Description,
		TaskType:          taskType,
		AllowResubmission: true,
	}
	if reqData.AllowResubmission != nil {
		task.AllowResubmission = *reqData.AllowResubmission
	}
	file, err := utils.FormFile(c, "file", "tasks")
	if err != nil {
		logger.Error("saving task attachment", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save uploaded file!", nil)
	}
	task.File = file

	var questions []services.QuestionInput
	if reqData.Questions != nil {
		questions = *reqData.Questions
	}
	created, err := services.CreateTask(database.Database.Db, &task, questions)
	if err != nil {
		utils.RemoveUploadedFile(file)
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Task created successfully.", created)
}

func UpdateTask(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTask").(*courseValidator.TaskRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var task courseModels.Task
	if err := db.First(&task, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Task not found!", nil)
	}

	task.TaskType, _ = courseModels.ParseTaskType(reqData.TaskType)
	task.VideoID = reqData.VideoID
	task.Title = reqData.Title
	task.Description = reqData.Description
	if reqData.AllowResubmission != nil {
		task.AllowResubmission = *reqData.AllowResubmission
	}
	file, err := utils.FormFile(c, "file", "tasks")
	if err != nil {
		logger.Error("saving task attachment", "task_id", task.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save uploaded file!", nil)
	}
	previous := task.File
	if file != "" {
		task.File = file
	}

	updated, err := services.UpdateTask(db, &task, reqData.Questions)
	if err != nil {
		utils.RemoveUploadedFile(file)
		return middleware.ErrorResponse(c, err)
	}
	if file != "" {
		utils.RemoveUploadedFile(previous)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task updated successfully.", updated)
}

func DeleteTask(c *fiber.Ctx) error {
	res := database.Database.Db.Delete(&courseModels.Task{}, c.Locals("id").(uint))
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Task not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task deleted successfully.", nil)
}

func TaskStats(c *fiber.Ctx) error {
	stats, err := services.GetTaskStats(database.Database.Db, c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task stats fetched successfully.", stats)
}

func LinkTaskToVideo(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLink").(*courseValidator.VideoQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	task, err := services.LinkTaskToVideo(database.Database.Db, c.Locals("id").(uint), reqData.VideoID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Task linked successfully.", task)
}
