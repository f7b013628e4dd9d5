package userRoutes

import (
	authControllers "lms/controllers/auth"
	userControllers "lms/controllers/userControllers"
	"lms/middleware"
	"lms/validators"
	authValidators "lms/validators/auth"
	userValidators "lms/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(api fiber.Router) {
	userGroup := api.Group("/users", middleware.JWTMiddleware)

	userGroup.Get("/me", authControllers.Me)
	userGroup.Post("/change-password", authValidators.ChangePassword(), authControllers.ChangePassword)

	userGroup.Get("/", middleware.AdminOnly, userValidators.UserList(), userControllers.ListUsers)
	userGroup.Get("/:id", middleware.AdminOnly, validators.ParamID(), userControllers.GetUser)
	userGroup.Put("/:id", middleware.AdminOnly, validators.ParamID(), userValidators.UpdateUser(), userControllers.UpdateUser)
	userGroup.Delete("/:id", middleware.AdminOnly, validators.ParamID(), userControllers.DeleteUser)
	userGroup.Post("/:id/block", middleware.AdminOnly, validators.ParamID(), userControllers.BlockUser)
	userGroup.Post("/:id/unblock", middleware.AdminOnly, validators.ParamID(), userControllers.UnblockUser)
}
