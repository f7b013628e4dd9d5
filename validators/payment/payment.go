package paymentValidator

import (
	"time"

	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type PaymentRequest struct {
	UserID      uint       `json:"user_id"`
	CategoryID  *uint      `json:"category_id"`
	ModuleID    *uint      `json:"module_id"`
	Amount      float64    `json:"amount" validate:"min=0"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending active expired cancelled"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func Payment() fiber.Handler {
	return validators.Body[PaymentRequest]("validatedPayment")
}

// StatusRequest is checked by the service so an unknown status is reported the same
// way on every path.
type StatusRequest struct {
	Status string `json:"status"`
}

func UpdateStatus() fiber.Handler {
	return validators.Body[StatusRequest]("validatedStatus")
}

type PaymentQuery struct {
	User   uint   `query:"user"`
	Status string `query:"status" validate:"omitempty,oneof=pending active expired cancelled"`
}

func PaymentList() fiber.Handler {
	return validators.Query[PaymentQuery]("validatedQuery")
}
