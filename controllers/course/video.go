package controllers

import (
	"lms/database"
	"lms/logger"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"lms/utils"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// videoView exposes the playable URLs only to admins and entitled students.
type videoView struct {
	courseModels.Video
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url"`
	HasAccess    bool   `json:"has_access"`
}

func newVideoView(user *models.User, v courseModels.Video) (videoView, error) {
	view := videoView{Video: v, ThumbnailURL: v.GetThumbnailURL()}
	if user.IsAdmin() {
		view.HasAccess = true
	} else {
		ok, err := services.HasAccess(database.Database.Db, user.ID, &v)
		if err != nil {
			return view, err
		}
		view.HasAccess = ok
	}
	if view.HasAccess {
		view.VideoURL = v.GetVideoURL()
	}
	return view, nil
}

func videoViews(c *fiber.Ctx, videos []courseModels.Video) ([]videoView, error) {
	user := middleware.CurrentUser(c)
	out := make([]videoView, 0, len(videos))
	for _, v := range videos {
		view, err := newVideoView(user, v)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func ListVideos(c *fiber.Ctx) error {
	db := database.Database.Db.Preload("Category")
	if q, _ := c.Locals("validatedQuery").(*courseValidator.CategoryQuery); q != nil && q.CategoryID != 0 {
		db = db.Where("category_id = ?", q.CategoryID)
	}
	var videos []courseModels.Video
	if err := db.Order("category_id, sort_order, id").Find(&videos).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	views, err := videoViews(c, videos)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Videos fetched successfully.", views)
}

// VideosByCategory is ListVideos with a mandatory category_id.
func VideosByCategory(c *fiber.Ctx) error {
	return ListVideos(c)
}

func GetVideo(c *fiber.Ctx) error {
	var video courseModels.Video
	if err := database.Database.Db.Preload("Category").Preload("Tasks").First(&video, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Video not found!", nil)
	}
	view, err := newVideoView(middleware.CurrentUser(c), video)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video fetched successfully.", view)
}

// applyVideoUploads stores uploaded files; an uploaded file replaces the URL of the same
// kind.
func applyVideoUploads(c *fiber.Ctx, video *courseModels.Video) error {
	videoFile, err := utils.FormFile(c, "video_file", "videos")
	if err != nil {
		return err
	}
	if videoFile != "" {
		utils.RemoveUploadedFile(video.VideoFile)
		video.VideoFile = videoFile
		video.VideoURL = ""
	}
	thumbFile, err := utils.FormFile(c, "thumbnail_file", "thumbnails")
	if err != nil {
		return err
	}
	if thumbFile != "" {
		utils.RemoveUploadedFile(video.ThumbnailFile)
		video.ThumbnailFile = thumbFile
		video.ThumbnailURL = ""
	}
	return nil
}

func CreateVideo(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedVideo").(*courseValidator.VideoRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	video := courseModels.Video{
		CategoryID:   reqData.CategoryID,
		ModuleID:     reqData.ModuleID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		Duration:     reqData.Duration,
		VideoURL:     reqData.VideoURL,
		ThumbnailURL: reqData.ThumbnailURL,
		Order:        reqData.Order,
	}
	db := database.Database.Db
	if err := services.CheckVideoModule(db, &video); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := applyVideoUploads(c, &video); err != nil {
		logger.Error("saving video upload", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save uploaded file!", nil)
	}
	if video.GetVideoURL() == "" {
		return middleware.ValidationErrorResponse(c, map[string]string{"video_url": "Either video_file or video_url is required!"})
	}

	if err := db.Omit("Category", "Module", "Tasks").Create(&video).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	view, _ := newVideoView(middleware.CurrentUser(c), video)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Video created successfully.", view)
}

func UpdateVideo(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedVideo").(*courseValidator.VideoRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var video courseModels.Video
	if err := db.First(&video, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Video not found!", nil)
	}

	video.CategoryID = reqData.CategoryID
	video.ModuleID = reqData.ModuleID
	video.Title = reqData.Title
	video.Description = reqData.Description
	video.Duration = reqData.Duration
	video.Order = reqData.Order
	if reqData.VideoURL != "" {
		video.VideoURL = reqData.VideoURL
	}
	if reqData.ThumbnailURL != "" {
		video.ThumbnailURL = reqData.ThumbnailURL
	}
	if err := services.CheckVideoModule(db, &video); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := applyVideoUploads(c, &video); err != nil {
		logger.Error("saving video upload", "video_id", video.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save uploaded file!", nil)
	}

	if err := db.Omit("Category", "Module", "Tasks").Save(&video).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	view, _ := newVideoView(middleware.CurrentUser(c), video)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video updated successfully.", view)
}

func DeleteVideo(c *fiber.Ctx) error {
	db := database.Database.Db
	var video courseModels.Video
	if err := db.First(&video, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Video not found!", nil)
	}
	if err := db.Delete(&video).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	utils.RemoveUploadedFile(video.VideoFile)
	utils.RemoveUploadedFile(video.ThumbnailFile)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video deleted successfully.", nil)
}

func IncrementView(c *fiber.Ctx) error {
	count, err := services.IncrementView(database.Database.Db, c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "View counted.", fiber.Map{"view_count": count})
}

func VideoStats(c *fiber.Ctx) error {
	stats, err := services.GetVideoStats(database.Database.Db, c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video stats fetched successfully.", stats)
}

func BulkReorderVideos(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedReorder").(*courseValidator.BulkReorderRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	if err := services.BulkReorderVideos(database.Database.Db, reqData.Updates); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Videos reordered successfully.", nil)
}

// VideoAccess reports whether the caller may watch the video.
func VideoAccess(c *fiber.Ctx) error {
	var video courseModels.Video
	if err := database.Database.Db.Preload("Category").First(&video, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Video not found!", nil)
	}
	user := middleware.CurrentUser(c)
	hasAccess := user.IsAdmin()
	if !hasAccess {
		var err error
		if hasAccess, err = services.HasAccess(database.Database.Db, user.ID, &video); err != nil {
			return middleware.ErrorResponse(c, err)
		}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access checked.", fiber.Map{"has_access": hasAccess})
}
