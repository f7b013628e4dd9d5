package middleware

import (
	"lms/logger"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

// AdminOnly must run after JWTMiddleware.
func AdminOnly(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User not found", nil)
	}
	if !user.IsAdmin() {
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
	return c.Next()
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusBadRequest, false, "Validation failed!", errors)
}

// ErrorResponse renders a service error. Unknown errors are logged and hidden behind a
// generic 500.
func ErrorResponse(c *fiber.Ctx, err error) error {
	appErr, ok := services.AsAppError(err)
	if !ok {
		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	switch appErr.Kind {
	case services.KindValidation:
		if len(appErr.Fields) > 0 {
			return JsonResponse(c, fiber.StatusBadRequest, false, appErr.Message, appErr.Fields)
		}
		return JsonResponse(c, fiber.StatusBadRequest, false, appErr.Message, nil)
	case services.KindNotFound:
		return JsonResponse(c, fiber.StatusNotFound, false, appErr.Message, nil)
	case services.KindForbidden:
		return JsonResponse(c, fiber.StatusForbidden, false, appErr.Message, nil)
	case services.KindAuth:
		return JsonResponse(c, fiber.StatusUnauthorized, false, appErr.Message, nil)
	case services.KindConflict:
		return JsonResponse(c, fiber.StatusBadRequest, false, appErr.Message, nil)
	}
	return JsonResponse(c, fiber.StatusInternalServerError, false, appErr.Message, nil)
}
