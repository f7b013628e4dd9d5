package controllers

import (
	"errors"

	"lms/database"
	"lms/logger"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func orderedModules(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order, id")
}

func ListCategories(c *fiber.Ctx) error {
	db := database.Database.Db
	var categories []courseModels.Category
	if err := db.Preload("Modules", orderedModules).Order("id").Find(&categories).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := services.AttachVideoCounts(db, categories); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully.", categories)
}

func GetCategory(c *fiber.Ctx) error {
	category, err := loadCategory(c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category fetched successfully.", category)
}

func loadCategory(id uint) (*courseModels.Category, error) {
	db := database.Database.Db
	var category courseModels.Category
	if err := db.Preload("Modules", orderedModules).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.NotFound("Category not found!")
		}
		return nil, err
	}
	categories := []courseModels.Category{category}
	if err := services.AttachVideoCounts(db, categories); err != nil {
		return nil, err
	}
	return &categories[0], nil
}

func CreateCategory(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCategory").(*courseValidator.CategoryRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	category := courseModels.Category{
		Name:               reqData.Name,
		Description:        deref(reqData.Description),
		Icon:               deref(reqData.Icon),
		Color:              deref(reqData.Color),
		Price:              deref(reqData.Price),
		IsModular:          deref(reqData.IsModular),
		RequiresSequential: deref(reqData.RequiresSequential),
	}
	if err := database.Database.Db.Create(&category).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	logger.Info("category created", "category_id", category.ID)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Category created successfully.", category)
}

func UpdateCategory(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCategory").(*courseValidator.CategoryRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	id := c.Locals("id").(uint)
	var category courseModels.Category
	if err := db.First(&category, id).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Category not found!", nil)
	}

	if err := db.Model(&category).Updates(reqData.Changes()).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	updated, err := loadCategory(id)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category updated successfully.", updated)
}

func DeleteCategory(c *fiber.Ctx) error {
	res := database.Database.Db.Delete(&courseModels.Category{}, c.Locals("id").(uint))
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Category not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category deleted successfully.", nil)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
