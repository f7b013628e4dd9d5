package course

import (
	"time"

	"lms/models"
)

const (
	GrantedByPayment = "payment"
	GrantedByGift    = "gift"
)

// UserCourse is a user's entitlement to a category. For modular categories, Modules
// holds the granted subset.
type UserCourse struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	UserID     uint         `json:"user_id" gorm:"uniqueIndex:idx_user_category;not null"`
	User       *models.User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CategoryID uint         `json:"category_id" gorm:"uniqueIndex:idx_user_category;not null"`
	Category   *Category    `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	GrantedBy  string       `json:"granted_by" gorm:"size:10;not null"`
	GrantedAt  time.Time    `json:"granted_at" gorm:"autoCreateTime"`
	ExpiresAt  *time.Time   `json:"expires_at"`
	Modules    []Module     `json:"modules" gorm:"many2many:user_course_modules;constraint:OnDelete:CASCADE"`
}

func (UserCourse) TableName() string {
	return "user_courses"
}

// HasModule reports whether moduleID is in the granted set.
func (uc *UserCourse) HasModule(moduleID uint) bool {
	for _, m := range uc.Modules {
		if m.ID == moduleID {
			return true
		}
	}
	return false
}

// Expired reports whether the entitlement has an expiry in the past.
func (uc *UserCourse) Expired(at time.Time) bool {
	return uc.ExpiresAt != nil && uc.ExpiresAt.Before(at)
}
