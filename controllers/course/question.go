package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type questionListQuery struct {
	TaskID uint `query:"task_id"`
}

func ListQuestions(c *fiber.Ctx) error {
	q := new(questionListQuery)
	if err := c.QueryParser(q); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}
	db := database.Database.Db.Model(&courseModels.TaskQuestion{})
	if q.TaskID != 0 {
		db = db.Where("task_id = ?", q.TaskID)
	}
	var questions []courseModels.TaskQuestion
	if err := db.Order("task_id, sort_order, id").Find(&questions).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully.", questions)
}

func GetQuestion(c *fiber.Ctx) error {
	var question courseModels.TaskQuestion
	if err := database.Database.Db.First(&question, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question fetched successfully.", question)
}

func CreateQuestion(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedQuestion").(*courseValidator.QuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	var task courseModels.Task
	if err := database.Database.Db.Select("id").First(&task, reqData.TaskID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Task not found!", nil)
	}

	question := courseModels.TaskQuestion{
		TaskID:        reqData.TaskID,
		Question:      reqData.Question,
		Options:       datatypes.JSONSlice[string](reqData.Options),
		CorrectAnswer: reqData.CorrectAnswer,
		Order:         reqData.Order,
	}
	if err := database.Database.Db.Create(&question).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully.", question)
}

func UpdateQuestion(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedQuestion").(*courseValidator.QuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var question courseModels.TaskQuestion
	if err := db.First(&question, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}
	if reqData.TaskID != question.TaskID {
		var count int64
		if err := db.Model(&courseModels.Task{}).Where("id = ?", reqData.TaskID).Count(&count).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if count == 0 {
			return middleware.ErrorResponse(c, services.NotFound("Task not found!"))
		}
	}

	question.TaskID = reqData.TaskID
	question.Question = reqData.Question
	question.Options = datatypes.JSONSlice[string](reqData.Options)
	question.CorrectAnswer = reqData.CorrectAnswer
	question.Order = reqData.Order
	if err := db.Save(&question).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully.", question)
}

func DeleteQuestion(c *fiber.Ctx) error {
	res := database.Database.Db.Delete(&courseModels.TaskQuestion{}, c.Locals("id").(uint))
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully.", nil)
}
