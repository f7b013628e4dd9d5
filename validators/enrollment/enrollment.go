package enrollmentValidator

import (
	"encoding/json"
	"strings"
	"time"

	"lms/middleware"
	"lms/models/course"
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type GrantCourseRequest struct {
	UserID     uint       `json:"user_id" validate:"required"`
	CategoryID uint       `json:"category_id" validate:"required"`
	GrantedBy  string     `json:"granted_by" validate:"omitempty,oneof=payment gift"`
	ModuleIDs  []uint     `json:"module_ids" validate:"omitempty,dive,required"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

func GrantCourse() fiber.Handler {
	return validators.Body[GrantCourseRequest]("validatedGrant")
}

type UserCourseUpdateRequest struct {
	ModuleIDs []uint     `json:"module_ids" validate:"omitempty,dive,required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func UpdateUserCourse() fiber.Handler {
	return validators.Body[UserCourseUpdateRequest]("validatedUserCourse")
}

type UserCourseQuery struct {
	UserID     uint `query:"user_id"`
	CategoryID uint `query:"category_id"`
}

func UserCourseList() fiber.Handler {
	return validators.Query[UserCourseQuery]("validatedQuery")
}

type CompleteVideoRequest struct {
	VideoID uint `json:"video_id" validate:"required"`
}

func CompleteVideo() fiber.Handler {
	return validators.Body[CompleteVideoRequest]("validatedComplete")
}

type CompleteTaskRequest struct {
	TaskID uint `json:"task_id" validate:"required"`
}

func CompleteTask() fiber.Handler {
	return validators.Body[CompleteTaskRequest]("validatedComplete")
}

type UserQuery struct {
	UserID uint `query:"user_id" json:"user_id" validate:"required"`
}

func UserProgress() fiber.Handler {
	return validators.Query[UserQuery]("validatedQuery")
}

// SubmitRequest accepts JSON, or a multipart form with the upload under "file" and
// answers as a JSON object string.
type SubmitRequest struct {
	TaskID      uint           `json:"task_id" form:"task_id" validate:"required"`
	TextContent string         `json:"text_content" form:"text_content"`
	Answers     course.Answers `json:"answers" form:"-"`
	Score       int            `json:"score" form:"score" validate:"min=0"`
	Total       int            `json:"total" form:"total" validate:"min=0,gtefield=Score"`
}

func Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			if raw := c.FormValue("answers"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &reqData.Answers); err != nil {
					return middleware.ValidationErrorResponse(c, map[string]string{"answers": "Answers must be a JSON object!"})
				}
			}
		}
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedSubmit", reqData)
		return c.Next()
	}
}

type ReviewRequest struct {
	Feedback string `json:"feedback"`
}

// Review tolerates an empty body.
func Review() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ReviewRequest)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}
		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}

type SubmissionQuery struct {
	Status  string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
	TaskID  uint   `query:"task_id"`
	VideoID uint   `query:"video_id"`
}

func SubmissionList() fiber.Handler {
	return validators.Query[SubmissionQuery]("validatedQuery")
}

type TaskQuery struct {
	TaskID uint `query:"task_id" json:"task_id" validate:"required"`
}

func ByTask() fiber.Handler {
	return validators.Query[TaskQuery]("validatedQuery")
}
