package enrollmentController

import (
	"lms/database"
	"lms/logger"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	"lms/utils"
	enrollmentValidator "lms/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

func ListSubmissions(c *fiber.Ctx) error {
	db := database.Database.Db.Model(&courseModels.TaskSubmission{})
	if q, _ := c.Locals("validatedQuery").(*enrollmentValidator.SubmissionQuery); q != nil {
		if q.Status != "" {
			db = db.Where("status = ?", q.Status)
		}
		if q.TaskID != 0 {
			db = db.Where("task_id = ?", q.TaskID)
		}
		if q.VideoID != 0 {
			db = db.Where("task_id IN (?)", database.Database.Db.Model(&courseModels.Task{}).Select("id").Where("video_id = ?", q.VideoID))
		}
	}
	var items []courseModels.TaskSubmission
	if err := db.Order("submitted_at desc, id desc").Find(&items).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully.", items)
}

// SubmissionsByTask and SubmissionsByVideo reuse ListSubmissions behind their own
// required-parameter validators.
func SubmissionsByTask(c *fiber.Ctx) error {
	q := c.Locals("validatedQuery").(*enrollmentValidator.TaskQuery)
	c.Locals("validatedQuery", &enrollmentValidator.SubmissionQuery{TaskID: q.TaskID})
	return ListSubmissions(c)
}

func SubmissionsByVideo(c *fiber.Ctx) error {
	videoID := c.QueryInt("video_id")
	if videoID <= 0 {
		return middleware.ValidationErrorResponse(c, map[string]string{"video_id": "video_id is required!"})
	}
	c.Locals("validatedQuery", &enrollmentValidator.SubmissionQuery{VideoID: uint(videoID)})
	return ListSubmissions(c)
}

func MySubmissions(c *fiber.Ctx) error {
	var items []courseModels.TaskSubmission
	if err := database.Database.Db.Where("user_id = ?", middleware.CurrentUser(c).ID).
		Order("submitted_at desc, id desc").Find(&items).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully.", items)
}

// loadOwnSubmission returns the submission if the caller owns it or is an admin.
func loadOwnSubmission(c *fiber.Ctx) (*courseModels.TaskSubmission, error) {
	var sub courseModels.TaskSubmission
	if err := database.Database.Db.First(&sub, c.Locals("id").(uint)).Error; err != nil {
		return nil, services.NotFound("Submission not found!")
	}
	user := middleware.CurrentUser(c)
	if !user.IsAdmin() && sub.UserID != user.ID {
		return nil, services.NotFound("Submission not found!")
	}
	return &sub, nil
}

func GetSubmission(c *fiber.Ctx) error {
	sub, err := loadOwnSubmission(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission fetched successfully.", sub)
}

func DetailWithAnswers(c *fiber.Ctx) error {
	if _, err := loadOwnSubmission(c); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	detail, err := services.DetailWithAnswers(database.Database.Db, c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission fetched successfully.", detail)
}

func DeleteSubmission(c *fiber.Ctx) error {
	db := database.Database.Db
	var sub courseModels.TaskSubmission
	if err := db.First(&sub, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found!", nil)
	}
	if err := db.Delete(&sub).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	utils.RemoveUploadedFile(sub.File)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission deleted successfully.", nil)
}

// Submit creates or replaces the caller's submission: 201 on first submit, 200 on
// resubmission.
func Submit(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSubmit").(*enrollmentValidator.SubmitRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	file, err := utils.FormFile(c, "file", "submissions")
	if err != nil {
		logger.Error("saving submission upload", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save uploaded file!", nil)
	}

	user := middleware.CurrentUser(c)
	db := database.Database.Db
	var previous []string
	if file != "" {
		if err := db.Model(&courseModels.TaskSubmission{}).
			Where("user_id = ? AND task_id = ?", user.ID, reqData.TaskID).
			Pluck("file", &previous).Error; err != nil {
			utils.RemoveUploadedFile(file)
			return middleware.ErrorResponse(c, err)
		}
	}
	sub, created, err := services.Submit(db, services.SubmitRequest{
		UserID:      user.ID,
		TaskID:      reqData.TaskID,
		File:        file,
		TextContent: reqData.TextContent,
		Answers:     reqData.Answers,
		Score:       reqData.Score,
		Total:       reqData.Total,
	})
	if err != nil {
		utils.RemoveUploadedFile(file)
		return middleware.ErrorResponse(c, err)
	}
	for _, old := range previous {
		if old != sub.File {
			utils.RemoveUploadedFile(old)
		}
	}
	if created {
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Task submitted successfully.", sub)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task resubmitted successfully.", sub)
}

func ApproveSubmission(c *fiber.Ctx) error {
	reqData, _ := c.Locals("validatedReview").(*enrollmentValidator.ReviewRequest)
	sub, err := services.ApproveSubmission(database.Database.Db, c.Locals("id").(uint), reqData.Feedback)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission approved.", sub)
}

func RejectSubmission(c *fiber.Ctx) error {
	reqData, _ := c.Locals("validatedReview").(*enrollmentValidator.ReviewRequest)
	sub, err := services.RejectSubmission(database.Database.Db, c.Locals("id").(uint), reqData.Feedback)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission rejected.", sub)
}
