package authController

import (
	"time"

	"lms/database"
	"lms/logger"
	"lms/middleware"
	"lms/models"
	"lms/services"
	authValidator "lms/validators/auth"

	"github.com/gofiber/fiber/v2"
)

type authResponse struct {
	User   *models.User `json:"user"`
	Access string       `json:"access"`
}

func Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.Register(database.Database.Db, services.RegisterInput{
		Username:  reqData.Username,
		Password:  reqData.Password,
		Email:     reqData.Email,
		Phone:     reqData.Phone,
		FirstName: reqData.FirstName,
		LastName:  reqData.LastName,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	token, err := middleware.GenerateJWT(user)
	if err != nil {
		logger.Error("generating token", "user_id", user.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", authResponse{User: user, Access: token})
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.Authenticate(database.Database.Db, reqData.Username, reqData.Password, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}
	logger.Info("user logged in", "user_id", user.ID, "ip", ip, "user_agent", c.Get("User-Agent"))

	token, err := middleware.GenerateJWT(user)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", authResponse{User: user, Access: token})
}

func Me(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", middleware.CurrentUser(c))
}

func ChangePassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPassword").(*authValidator.ChangePasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	user := middleware.CurrentUser(c)
	if err := services.ChangePassword(database.Database.Db, user.ID, reqData.OldPassword, reqData.NewPassword); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}
