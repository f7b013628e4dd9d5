package authValidator

import (
	"regexp"
	"strings"

	"lms/middleware"
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

var phoneRe = regexp.MustCompile(`^\+?\d{7,15}$`)

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,notblank,max=150"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	FirstName string `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string `json:"last_name" validate:"required,notblank,max=100"`
}

// Register validates the signup body and stores it as "validatedRegister".
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RegisterRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := validators.Struct(reqData)
		if errors == nil {
			errors = make(map[string]string)
		}
		if reqData.Password != reqData.Password2 {
			errors["password2"] = "Passwords do not match!"
		}
		if reqData.Phone != "" && !phoneRe.MatchString(reqData.Phone) {
			errors["phone"] = "Invalid phone number!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		reqData.Username = strings.TrimSpace(reqData.Username)
		c.Locals("validatedRegister", reqData)
		return c.Next()
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

func Login() fiber.Handler {
	return validators.Body[LoginRequest]("validatedLogin")
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func ChangePassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ChangePasswordRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		errors := validators.Struct(reqData)
		if errors == nil && reqData.OldPassword == reqData.NewPassword {
			errors = map[string]string{"new_password": "New password must differ from the old one!"}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedPassword", reqData)
		return c.Next()
	}
}
