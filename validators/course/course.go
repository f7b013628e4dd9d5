package courseValidator

import (
	"encoding/json"
	"strconv"
	"strings"

	"lms/middleware"
	"lms/services"
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

// CategoryRequest leaves nil fields untouched on update.
type CategoryRequest struct {
	Name               string   `json:"name" form:"name" validate:"required,notblank,max=255"`
	Description        *string  `json:"description" form:"description"`
	Icon               *string  `json:"icon" form:"icon" validate:"omitempty,max=10"`
	Color              *string  `json:"color" form:"color" validate:"omitempty,max=50"`
	Price              *float64 `json:"price" form:"price" validate:"omitempty,min=0"`
	IsModular          *bool    `json:"is_modular" form:"is_modular"`
	RequiresSequential *bool    `json:"requires_sequential" form:"requires_sequential"`
}

// Changes returns the columns to write: name plus every field that was sent.
func (r *CategoryRequest) Changes() map[string]interface{} {
	changes := map[string]interface{}{"name": r.Name}
	if r.Description != nil {
		changes["description"] = *r.Description
	}
	if r.Icon != nil {
		changes["icon"] = *r.Icon
	}
	if r.Color != nil {
		changes["color"] = *r.Color
	}
	if r.Price != nil {
		changes["price"] = *r.Price
	}
	if r.IsModular != nil {
		changes["is_modular"] = *r.IsModular
	}
	if r.RequiresSequential != nil {
		changes["requires_sequential"] = *r.RequiresSequential
	}
	return changes
}

func Category() fiber.Handler {
	return validators.Body[CategoryRequest]("validatedCategory")
}

type ModuleRequest struct {
	CategoryID  uint     `json:"category_id" validate:"required"`
	Title       string   `json:"title" validate:"required,notblank,max=255"`
	Description string   `json:"description"`
	Order       int      `json:"order" validate:"min=0"`
	Price       *float64 `json:"price" validate:"omitempty,min=0"`
}

func Module() fiber.Handler {
	return validators.Body[ModuleRequest]("validatedModule")
}

type CategoryQuery struct {
	CategoryID uint `query:"category_id"`
}

func ModuleList() fiber.Handler {
	return validators.Query[CategoryQuery]("validatedQuery")
}

// ByCategory requires category_id.
func ByCategory() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Query("category_id"), 10, 64)
		if err != nil || id == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"category_id": "category_id is required!"})
		}
		c.Locals("validatedQuery", &CategoryQuery{CategoryID: uint(id)})
		return c.Next()
	}
}

// VideoRequest is read from a multipart form or JSON; files are taken from the form.
type VideoRequest struct {
	CategoryID   uint   `json:"category_id" form:"category_id" validate:"required"`
	ModuleID     *uint  `json:"module_id" form:"module_id"`
	Title        string `json:"title" form:"title" validate:"required,notblank,max=255"`
	Description  string `json:"description" form:"description"`
	Duration     string `json:"duration" form:"duration" validate:"max=10"`
	VideoURL     string `json:"video_url" form:"video_url" validate:"omitempty,url"`
	ThumbnailURL string `json:"thumbnail_url" form:"thumbnail_url" validate:"omitempty,url"`
	Order        int    `json:"order" form:"order" validate:"min=0"`
}

func Video() fiber.Handler {
	return validators.Body[VideoRequest]("validatedVideo")
}

type BulkReorderRequest struct {
	Updates []services.OrderUpdate `json:"updates" validate:"required,min=1,dive"`
}

func BulkReorder() fiber.Handler {
	return validators.Body[BulkReorderRequest]("validatedReorder")
}

type QuestionRequest struct {
	TaskID        uint     `json:"task_id" validate:"required"`
	Question      string   `json:"question" validate:"required,notblank"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectAnswer int      `json:"correct_answer" validate:"min=0"`
	Order         int      `json:"order" validate:"min=0"`
}

func Question() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(QuestionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		errors := validators.Struct(reqData)
		if errors == nil && reqData.CorrectAnswer >= len(reqData.Options) {
			errors = map[string]string{"correct_answer": "Correct answer must be a valid option index!"}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

// TaskRequest accepts JSON, or a multipart form with the attachment under "file" and
// questions as a JSON string.
type TaskRequest struct {
	VideoID           uint                      `json:"video_id" form:"video_id" validate:"required"`
	Title             string                    `json:"title" form:"title" validate:"required,notblank,max=255"`
	Description       string                    `json:"description" form:"description"`
	TaskType          string                    `json:"task_type" form:"task_type" validate:"required,oneof=test file text"`
	AllowResubmission *bool                     `json:"allow_resubmission" form:"allow_resubmission"`
	Questions         *[]services.QuestionInput `json:"questions" form:"-"`
}

func Task() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(TaskRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if raw := c.FormValue("questions"); raw != "" && reqData.Questions == nil &&
			strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			var qs []services.QuestionInput
			if err := json.Unmarshal([]byte(raw), &qs); err != nil {
				return middleware.ValidationErrorResponse(c, map[string]string{"questions": "Questions must be a JSON array!"})
			}
			reqData.Questions = &qs
		}
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedTask", reqData)
		return c.Next()
	}
}

// VideoQuery requires video_id.
type VideoQuery struct {
	VideoID uint `query:"video_id" json:"video_id" validate:"required"`
}

func ByVideo() fiber.Handler {
	return validators.Query[VideoQuery]("validatedQuery")
}

func LinkToVideo() fiber.Handler {
	return validators.Body[VideoQuery]("validatedLink")
}
