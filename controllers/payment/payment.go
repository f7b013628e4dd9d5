package paymentController

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/services"
	paymentValidator "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func toInput(req *paymentValidator.PaymentRequest) services.PaymentInput {
	return services.PaymentInput{
		UserID:      req.UserID,
		CategoryID:  req.CategoryID,
		ModuleID:    req.ModuleID,
		Amount:      req.Amount,
		Description: req.Description,
		Status:      req.Status,
		ExpiresAt:   req.ExpiresAt,
	}
}

func ListPayments(c *fiber.Ctx) error {
	filter := services.PaymentFilter{}
	if q, _ := c.Locals("validatedQuery").(*paymentValidator.PaymentQuery); q != nil {
		filter.UserID = q.User
		filter.Status = q.Status
	}
	items, err := services.ListPayments(database.Database.Db, filter)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully.", items)
}

func MyPayments(c *fiber.Ctx) error {
	items, err := services.ListPayments(database.Database.Db, services.PaymentFilter{UserID: middleware.CurrentUser(c).ID})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully.", items)
}

func GetPayment(c *fiber.Ctx) error {
	var payment models.Payment
	if err := database.Database.Db.First(&payment, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}
	user := middleware.CurrentUser(c)
	if !user.IsAdmin() && payment.UserID != user.ID {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment fetched successfully.", payment)
}

// CreatePayment lets admins record any payment; students may only open a pending
// payment for themselves.
func CreatePayment(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPayment").(*paymentValidator.PaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	in := toInput(reqData)
	user := middleware.CurrentUser(c)
	if !user.IsAdmin() {
		in.UserID = user.ID
		in.Status = models.PaymentPending
	} else if in.UserID == 0 {
		in.UserID = user.ID
	}

	payment, err := services.CreatePayment(database.Database.Db, in)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment created successfully.", payment)
}

func UpdatePayment(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPayment").(*paymentValidator.PaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	payment, err := services.UpdatePayment(database.Database.Db, c.Locals("id").(uint), toInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment updated successfully.", payment)
}

func UpdatePaymentStatus(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedStatus").(*paymentValidator.StatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	payment, err := services.UpdatePaymentStatus(database.Database.Db, c.Locals("id").(uint), reqData.Status)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment status updated.", payment)
}

func DeletePayment(c *fiber.Ctx) error {
	res := database.Database.Db.Delete(&models.Payment{}, c.Locals("id").(uint))
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment deleted successfully.", nil)
}
