package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// ListModules lists modules, optionally of one category.
func ListModules(c *fiber.Ctx) error {
	q, _ := c.Locals("validatedQuery").(*courseValidator.CategoryQuery)
	db := database.Database.Db.Model(&courseModels.Module{})
	if q != nil && q.CategoryID != 0 {
		db = db.Where("category_id = ?", q.CategoryID)
	}
	var modules []courseModels.Module
	if err := db.Order("category_id, sort_order, id").Find(&modules).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully.", modules)
}

func GetModule(c *fiber.Ctx) error {
	var module courseModels.Module
	if err := database.Database.Db.First(&module, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module fetched successfully.", module)
}

func CreateModule(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if err := services.CheckModuleCategory(db, reqData.CategoryID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	// Without an explicit order the module goes last.
	order := reqData.Order
	if order == 0 {
		var maxOrder int
		if err := db.Model(&courseModels.Module{}).Where("category_id = ?", reqData.CategoryID).
			Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
		order = maxOrder + 1
	}

	module := courseModels.Module{
		CategoryID:  reqData.CategoryID,
		Title:       reqData.Title,
		Description: reqData.Description,
		Order:       order,
		Price:       reqData.Price,
	}
	if err := db.Create(&module).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully.", module)
}

func UpdateModule(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var module courseModels.Module
	if err := db.First(&module, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}
	if reqData.CategoryID != module.CategoryID {
		if err := services.CheckModuleCategory(db, reqData.CategoryID); err != nil {
			return middleware.ErrorResponse(c, err)
		}
	}

	module.CategoryID = reqData.CategoryID
	module.Title = reqData.Title
	module.Description = reqData.Description
	module.Order = reqData.Order
	module.Price = reqData.Price
	if err := db.Save(&module).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully.", module)
}

func DeleteModule(c *fiber.Ctx) error {
	res := database.Database.Db.Delete(&courseModels.Module{}, c.Locals("id").(uint))
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully.", nil)
}
