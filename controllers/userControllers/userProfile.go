package userController

import (
	"lms/database"
	"lms/middleware"
	"lms/services"
	"lms/utils"
	userValidator "lms/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

// ListUsers is the admin user list with role/search filters.
func ListUsers(c *fiber.Ctx) error {
	q, _ := c.Locals("validatedQuery").(*userValidator.UserListQuery)
	if q == nil {
		q = &userValidator.UserListQuery{}
	}
	q.Normalize()

	users, total, err := services.ListUsers(database.Database.Db, services.UserFilter{
		Role:   q.Role,
		Search: q.Search,
		Offset: q.Offset(),
		Limit:  q.Limit,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully.", utils.Paginated{
		Items: users,
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
	})
}

func GetUser(c *fiber.Ctx) error {
	user, err := services.GetUser(database.Database.Db, c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully.", user)
}

func UpdateUser(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*userValidator.UpdateUserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	user, err := services.UpdateUser(database.Database.Db, c.Locals("id").(uint), services.UserPatch{
		Email:     reqData.Email,
		Phone:     reqData.Phone,
		FirstName: reqData.FirstName,
		LastName:  reqData.LastName,
		Role:      reqData.Role,
		Avatar:    reqData.Avatar,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully.", user)
}

func DeleteUser(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	if id == middleware.CurrentUser(c).ID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot delete your own account!", nil)
	}
	if err := services.DeleteUser(database.Database.Db, id); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully.", nil)
}

func BlockUser(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	if id == middleware.CurrentUser(c).ID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot block your own account!", nil)
	}
	user, err := services.SetBlocked(database.Database.Db, id, true)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User blocked successfully.", user)
}

func UnblockUser(c *fiber.Ctx) error {
	user, err := services.SetBlocked(database.Database.Db, c.Locals("id").(uint), false)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User unblocked successfully.", user)
}
