package course

import "time"

// Category is a purchasable course.
type Category struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"size:255;not null"`
	Description string  `json:"description" gorm:"type:text"`
	Icon        string  `json:"icon" gorm:"size:10"`
	Color       string  `json:"color" gorm:"size:50"`
	Price       float64 `json:"price" gorm:"type:decimal(10,2);default:0"`
	IsModular   bool    `json:"is_modular" gorm:"default:false"`
	// RequiresSequential is stored for clients; no access path enforces ordering.
	RequiresSequential bool      `json:"requires_sequential" gorm:"default:false"`
	VideoCount         int64     `json:"video_count" gorm:"-"`
	Modules            []Module  `json:"modules,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Videos             []Video   `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time `json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}
