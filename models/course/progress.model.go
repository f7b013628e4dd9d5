package course

import (
	"gorm.io/datatypes"
)

// StudentProgress holds the ids a user has completed. Both lists behave as sets.
type StudentProgress struct {
	ID              uint                      `json:"id" gorm:"primaryKey"`
	UserID          uint                      `json:"user_id" gorm:"uniqueIndex;not null"`
	CompletedVideos datatypes.JSONSlice[uint] `json:"completed_videos"`
	CompletedTasks  datatypes.JSONSlice[uint] `json:"completed_tasks"`
}

func (StudentProgress) TableName() string {
	return "student_progress"
}

// appendUnique adds id when absent and reports whether the slice changed.
func appendUnique(ids datatypes.JSONSlice[uint], id uint) (datatypes.JSONSlice[uint], bool) {
	for _, existing := range ids {
		if existing == id {
			return ids, false
		}
	}
	return append(ids, id), true
}

func (p *StudentProgress) AddVideo(id uint) bool {
	var changed bool
	p.CompletedVideos, changed = appendUnique(p.CompletedVideos, id)
	return changed
}

func (p *StudentProgress) AddTask(id uint) bool {
	var changed bool
	p.CompletedTasks, changed = appendUnique(p.CompletedTasks, id)
	return changed
}
