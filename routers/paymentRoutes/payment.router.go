package paymentRoutes

import (
	controllers "lms/controllers/payment"
	"lms/middleware"
	"lms/validators"
	paymentValidators "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(api fiber.Router) {
	id := validators.ParamID()
	admin := middleware.AdminOnly

	paymentGroup := api.Group("/payments", middleware.JWTMiddleware)
	paymentGroup.Get("/my-payments", controllers.MyPayments)
	paymentGroup.Get("/", admin, paymentValidators.PaymentList(), controllers.ListPayments)
	paymentGroup.Post("/", paymentValidators.Payment(), controllers.CreatePayment)
	paymentGroup.Get("/:id", id, controllers.GetPayment)
	paymentGroup.Put("/:id", admin, id, paymentValidators.Payment(), controllers.UpdatePayment)
	paymentGroup.Delete("/:id", admin, id, controllers.DeletePayment)
	paymentGroup.Post("/:id/update-status", admin, id, paymentValidators.UpdateStatus(), controllers.UpdatePaymentStatus)
}
