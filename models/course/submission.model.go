package course

import (
	"time"

	"lms/models"

	"gorm.io/datatypes"
)

const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// Answers maps a question id (as a string) to the selected option index.
type Answers map[string]int

// TaskSubmission is the single current submission of a user for a task.
type TaskSubmission struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	UserID      uint                        `json:"user_id" gorm:"uniqueIndex:idx_user_task;not null"`
	User        *models.User                `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	TaskID      uint                        `json:"task_id" gorm:"uniqueIndex:idx_user_task;not null;index"`
	Task        *Task                       `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	File        string                      `json:"file"`
	TextContent string                      `json:"text_content" gorm:"type:text"`
	Answers     datatypes.JSONType[Answers] `json:"answers"`
	Score       int                         `json:"score" gorm:"default:0"`
	Total       int                         `json:"total" gorm:"default:0"`
	Status      string                      `json:"status" gorm:"size:10;default:'pending';index"`
	Feedback    *string                     `json:"feedback" gorm:"type:text"`
	ReviewedAt  *time.Time                  `json:"reviewed_at"`
	SubmittedAt time.Time                   `json:"submitted_at" gorm:"autoCreateTime"`
}

func (TaskSubmission) TableName() string {
	return "task_submissions"
}

// AnswerMap returns the stored answers, never nil.
func (s *TaskSubmission) AnswerMap() Answers {
	a := s.Answers.Data()
	if a == nil {
		return Answers{}
	}
	return a
}
