package models

import "time"

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	Username            string     `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Password            string     `json:"-" gorm:"not null"`
	Email               string     `json:"email" gorm:"default:''"`
	Phone               string     `json:"phone" gorm:"size:20;default:''"`
	FirstName           string     `json:"first_name" gorm:"size:100;default:''"`
	LastName            string     `json:"last_name" gorm:"size:100;default:''"`
	Role                string     `json:"role" gorm:"size:10;default:'student';index"`
	Avatar              string     `json:"avatar" gorm:"default:''"`
	WatermarkID         *string    `json:"watermark_id" gorm:"size:8;uniqueIndex"`
	IsBlocked           bool       `json:"is_blocked" gorm:"default:false;index"`
	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LockedUntil         *time.Time `json:"-"`
	LastLogin           *time.Time `json:"last_login"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName falls back to the username when no name parts are set.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
