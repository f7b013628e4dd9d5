package course

import (
	"time"

	"gorm.io/datatypes"
)

// TaskType selects how a task is submitted and graded.
type TaskType string

const (
	TaskTest TaskType = "test" // multiple choice, auto-approved
	TaskFile TaskType = "file" // upload, manual review
	TaskText TaskType = "text" // free text, manual review
)

func ParseTaskType(s string) (TaskType, bool) {
	switch TaskType(s) {
	case TaskTest, TaskFile, TaskText:
		return TaskType(s), true
	}
	return "", false
}

// RequiresApproval reports whether submissions wait for an admin review.
func (t TaskType) RequiresApproval() bool {
	return t == TaskFile || t == TaskText
}

// InitialStatus is the status a fresh or replaced submission starts in.
func (t TaskType) InitialStatus() string {
	if t == TaskTest {
		return SubmissionApproved
	}
	return SubmissionPending
}

type Task struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	VideoID           uint           `json:"video_id" gorm:"index;not null"`
	Video             *Video         `json:"-" gorm:"foreignKey:VideoID"`
	Title             string         `json:"title" gorm:"size:255;not null"`
	Description       string         `json:"description" gorm:"type:text"`
	TaskType          TaskType       `json:"task_type" gorm:"size:10;default:'test'"`
	File              string         `json:"file"`
	AllowResubmission bool           `json:"allow_resubmission" gorm:"not null"`
	RequiresApproval  bool           `json:"requires_approval" gorm:"default:false"`
	Questions         []TaskQuestion `json:"questions" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time      `json:"created_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskQuestion is a multiple-choice question; CorrectAnswer indexes Options.
type TaskQuestion struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	TaskID        uint                        `json:"task_id" gorm:"index;not null"`
	Question      string                      `json:"question" gorm:"type:text;not null"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer int                         `json:"correct_answer"`
	Order         int                         `json:"order" gorm:"column:sort_order;default:0"`
}

func (TaskQuestion) TableName() string {
	return "task_questions"
}

// ValidAnswer reports whether idx points at one of the question's options.
func (q *TaskQuestion) ValidAnswer(idx int) bool {
	return idx >= 0 && idx < len(q.Options)
}
