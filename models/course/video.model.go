package course

import "time"

// Video belongs to one category and optionally to one of its modules.
type Video struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	CategoryID    uint      `json:"category_id" gorm:"index;not null"`
	Category      *Category `json:"-" gorm:"foreignKey:CategoryID"`
	ModuleID      *uint     `json:"module_id" gorm:"index"`
	Module        *Module   `json:"-" gorm:"foreignKey:ModuleID;constraint:OnDelete:SET NULL"`
	Title         string    `json:"title" gorm:"size:255;not null"`
	Description   string    `json:"description" gorm:"type:text"`
	Duration      string    `json:"duration" gorm:"size:10"`
	VideoFile     string    `json:"-"`
	VideoURL      string    `json:"-"`
	ThumbnailFile string    `json:"-"`
	ThumbnailURL  string    `json:"-"`
	Order         int       `json:"order" gorm:"column:sort_order;default:0;index"`
	ViewCount     int64     `json:"view_count" gorm:"default:0"`
	Tasks         []Task    `json:"tasks,omitempty" gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Video) TableName() string {
	return "videos"
}

// GetVideoURL prefers the uploaded file over the external URL.
func (v *Video) GetVideoURL() string {
	if v.VideoFile != "" {
		return v.VideoFile
	}
	return v.VideoURL
}

// GetThumbnailURL prefers the uploaded file over the external URL.
func (v *Video) GetThumbnailURL() string {
	if v.ThumbnailFile != "" {
		return v.ThumbnailFile
	}
	return v.ThumbnailURL
}
