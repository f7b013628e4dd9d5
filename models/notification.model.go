package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationSystem  = "system"
	NotificationCourse  = "course"
	NotificationPayment = "payment"
	NotificationTask    = "task"
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationSuccess = "success"
	NotificationError   = "error"
)

const (
	NotificationStatusSent      = "sent"
	NotificationStatusScheduled = "scheduled"
)

// BroadcastTypes are the types an admin may choose when sending by hand.
var BroadcastTypes = []string{NotificationInfo, NotificationWarning, NotificationSuccess, NotificationError}

// Notification is an immutable broadcast. Recipients are resolved once, when it is dispatched.
type Notification struct {
	ID            uint                      `json:"id" gorm:"primaryKey"`
	Title         string                    `json:"title" gorm:"size:255;not null"`
	Message       string                    `json:"message" gorm:"type:text;not null"`
	Type          string                    `json:"type" gorm:"size:10;default:'info';index"`
	Recipients    []User                    `json:"-" gorm:"many2many:notification_recipients;constraint:OnDelete:CASCADE"`
	SentCount     int                       `json:"sent_count" gorm:"default:0"`
	Status        string                    `json:"status" gorm:"size:10;default:'sent';index"`
	ScheduledAt   *time.Time                `json:"scheduled_at"`
	TargetAll     bool                      `json:"target_all" gorm:"default:false"`
	TargetUserIDs datatypes.JSONSlice[uint] `json:"target_user_ids,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// UserNotification is the per-recipient delivery record.
type UserNotification struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	UserID         uint         `json:"user_id" gorm:"uniqueIndex:idx_user_notification;not null"`
	NotificationID uint         `json:"-" gorm:"uniqueIndex:idx_user_notification;not null"`
	Notification   Notification `json:"notification" gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE"`
	IsRead         bool         `json:"is_read" gorm:"default:false;index"`
	ReceivedAt     time.Time    `json:"received_at" gorm:"autoCreateTime"`
}

func (UserNotification) TableName() string {
	return "user_notifications"
}

// NotificationRecipient is the join row between a notification and a resolved recipient.
type NotificationRecipient struct {
	NotificationID uint `gorm:"primaryKey"`
	UserID         uint `gorm:"primaryKey"`
}

func (NotificationRecipient) TableName() string {
	return "notification_recipients"
}
