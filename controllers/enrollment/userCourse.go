package enrollmentController

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	enrollmentValidator "lms/validators/enrollment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func orderedModules(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order, id")
}

func ListUserCourses(c *fiber.Ctx) error {
	db := database.Database.Db.Preload("Modules", orderedModules).Preload("Category")
	if q, _ := c.Locals("validatedQuery").(*enrollmentValidator.UserCourseQuery); q != nil {
		if q.UserID != 0 {
			db = db.Where("user_id = ?", q.UserID)
		}
		if q.CategoryID != 0 {
			db = db.Where("category_id = ?", q.CategoryID)
		}
	}
	var items []courseModels.UserCourse
	if err := db.Order("granted_at desc, id desc").Find(&items).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User courses fetched successfully.", withCategory(items))
}

// userCourseView includes the category in responses.
type userCourseView struct {
	courseModels.UserCourse
	Category *courseModels.Category `json:"category,omitempty"`
}

func withCategory(items []courseModels.UserCourse) []userCourseView {
	out := make([]userCourseView, 0, len(items))
	for _, uc := range items {
		out = append(out, userCourseView{UserCourse: uc, Category: uc.Category})
	}
	return out
}

func GetUserCourse(c *fiber.Ctx) error {
	var uc courseModels.UserCourse
	if err := database.Database.Db.Preload("Modules", orderedModules).Preload("Category").
		First(&uc, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User course not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User course fetched successfully.", userCourseView{UserCourse: uc, Category: uc.Category})
}

// GrantCourse ensures the entitlement: 201 when it was created, 200 when it existed.
func GrantCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedGrant").(*enrollmentValidator.GrantCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	uc, created, err := services.GrantCourse(database.Database.Db, services.GrantRequest{
		UserID:     reqData.UserID,
		CategoryID: reqData.CategoryID,
		GrantedBy:  reqData.GrantedBy,
		ModuleIDs:  reqData.ModuleIDs,
		ExpiresAt:  reqData.ExpiresAt,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if created {
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course granted successfully.", uc)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course already granted.", uc)
}

// CreateUserCourse is the plain create endpoint; it shares GrantCourse semantics.
func CreateUserCourse(c *fiber.Ctx) error {
	return GrantCourse(c)
}

// UpdateUserCourse adds modules to the granted set and replaces the expiry.
func UpdateUserCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUserCourse").(*enrollmentValidator.UserCourseUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	updated, err := services.UpdateEntitlement(database.Database.Db, c.Locals("id").(uint), reqData.ModuleIDs, reqData.ExpiresAt)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User course updated successfully.", updated)
}

func DeleteUserCourse(c *fiber.Ctx) error {
	db := database.Database.Db
	var uc courseModels.UserCourse
	if err := db.First(&uc, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User course not found!", nil)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&uc).Association("Modules").Clear(); err != nil {
			return err
		}
		return tx.Delete(&uc).Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User course deleted successfully.", nil)
}

func MyCourses(c *fiber.Ctx) error {
	items, err := services.MyCourses(database.Database.Db, middleware.CurrentUser(c).ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", withCategory(items))
}
