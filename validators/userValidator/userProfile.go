package userValidator

import (
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type UserListQuery struct {
	validators.Pagination
	Role   string `query:"role" validate:"omitempty,oneof=admin student"`
	Search string `query:"search"`
}

func UserList() fiber.Handler {
	return validators.Query[UserListQuery]("validatedQuery")
}

// UpdateUserRequest holds admin edits; nil fields are left untouched.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin student"`
	Avatar    *string `json:"avatar"`
}

func UpdateUser() fiber.Handler {
	return validators.Body[UpdateUserRequest]("validatedUser")
}
