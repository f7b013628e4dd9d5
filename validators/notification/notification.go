package notificationValidator

import (
	"time"

	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

// SendRequest is checked in depth by the service; only the shape is validated here.
type SendRequest struct {
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Type        string     `json:"type"`
	SendToAll   bool       `json:"send_to_all"`
	UserIDs     []uint     `json:"user_ids" validate:"omitempty,dive,required"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func Send() fiber.Handler {
	return validators.Body[SendRequest]("validatedNotification")
}

type MyNotificationsQuery struct {
	UnreadOnly bool `query:"unread_only"`
}

func MyNotifications() fiber.Handler {
	return validators.Query[MyNotificationsQuery]("validatedQuery")
}
