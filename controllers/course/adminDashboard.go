package controllers

import (
	"time"

	"lms/database"
	"lms/middleware"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

// AdminDashboardStats returns the admin overview counters.
func AdminDashboardStats(c *fiber.Ctx) error {
	stats, err := services.GetDashboardStats(database.Database.Db, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully.", stats)
}
