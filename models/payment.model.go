package models

import "time"

const (
	PaymentPending   = "pending"
	PaymentActive    = "active"
	PaymentExpired   = "expired"
	PaymentCancelled = "cancelled"
)

// PaymentStatuses lists every accepted payment status.
var PaymentStatuses = []string{PaymentPending, PaymentActive, PaymentExpired, PaymentCancelled}

func IsPaymentStatus(s string) bool {
	for _, st := range PaymentStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Payment records money received for a course (category) or one of its modules.
type Payment struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	User        User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CategoryID  *uint      `json:"category_id" gorm:"index"`
	ModuleID    *uint      `json:"module_id"`
	Amount      float64    `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description string     `json:"description" gorm:"type:text"`
	Status      string     `json:"status" gorm:"size:20;default:'pending';index"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
