package course

import "time"

// Module is an ordered, separately grantable part of a modular category.
type Module struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CategoryID  uint      `json:"category_id" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Order       int       `json:"order" gorm:"column:sort_order;default:0"`
	Price       *float64  `json:"price" gorm:"type:decimal(10,2)"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Module) TableName() string {
	return "modules"
}
