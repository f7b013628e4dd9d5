package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"lms/models"
	"lms/models/course"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmitRequest carries a student's submission. Score and Total are trusted as sent by
// the client; they are not recomputed from Answers.
type SubmitRequest struct {
	UserID      uint
	TaskID      uint
	File        string
	TextContent string
	Answers     course.Answers
	Score       int
	Total       int
}

func (r SubmitRequest) validate() error {
	fields := make(map[string]string)
	if r.Score < 0 {
		fields["score"] = "Score cannot be negative!"
	}
	if r.Total < 0 {
		fields["total"] = "Total cannot be negative!"
	}
	if r.Score > r.Total && r.Total >= 0 && r.Score >= 0 {
		fields["score"] = "Score cannot exceed total!"
	}
	if len(fields) > 0 {
		return ValidationError("Validation failed!", fields)
	}
	return nil
}

// validateFirst applies the per task type requirements of a first submission.
func (r SubmitRequest) validateFirst(t course.TaskType) error {
	switch t {
	case course.TaskTest:
		if len(r.Answers) == 0 {
			return FieldError("answers", "Answers are required for a test!")
		}
	case course.TaskFile:
		if r.File == "" {
			return FieldError("file", "A file is required for this task!")
		}
	case course.TaskText:
		if strings.TrimSpace(r.TextContent) == "" {
			return FieldError("text_content", "Text is required for this task!")
		}
	}
	return nil
}

// Submit creates the user's submission for a task or, when the task allows it, replaces
// the existing one in place. The returned bool is true when a new row was created.
func Submit(db *gorm.DB, req SubmitRequest) (*course.TaskSubmission, bool, error) {
	if err := req.validate(); err != nil {
		return nil, false, err
	}

	var (
		sub     course.TaskSubmission
		created bool
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var task course.Task
		if err := tx.First(&task, req.TaskID).Error; err != nil {
			return notFoundOr(err, "Task not found", "load task")
		}

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND task_id = ?", req.UserID, req.TaskID).
			First(&sub).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load submission: %w", err)
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := req.validateFirst(task.TaskType); err != nil {
				return err
			}
			sub = course.TaskSubmission{
				UserID:      req.UserID,
				TaskID:      req.TaskID,
				File:        req.File,
				TextContent: req.TextContent,
				Answers:     datatypes.NewJSONType(nonNilAnswers(req.Answers)),
				Score:       req.Score,
				Total:       req.Total,
				Status:      task.TaskType.InitialStatus(),
			}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
				DoNothing: true,
			}).Create(&sub)
			if res.Error != nil {
				return fmt.Errorf("create submission: %w", res.Error)
			}
			if res.RowsAffected == 1 {
				created = true
				return nil
			}
			// A concurrent submit won the insert; continue as a resubmission.
			sub = course.TaskSubmission{}
			if err := tx.Where("user_id = ? AND task_id = ?", req.UserID, req.TaskID).First(&sub).Error; err != nil {
				return fmt.Errorf("reload submission: %w", err)
			}
		}

		if !task.AllowResubmission {
			return ErrResubmissionNotAllowed
		}
		resubmit(&sub, &task, req)
		if err := tx.Save(&sub).Error; err != nil {
			return fmt.Errorf("update submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &sub, created, nil
}

// resubmit overwrites only the non-empty payload fields, resets the status from the task
// type and clears the previous review.
func resubmit(sub *course.TaskSubmission, task *course.Task, req SubmitRequest) {
	if req.File != "" {
		sub.File = req.File
	}
	if req.TextContent != "" {
		sub.TextContent = req.TextContent
	}
	if len(req.Answers) > 0 {
		sub.Answers = datatypes.NewJSONType(req.Answers)
	}
	sub.Score = req.Score
	sub.Total = req.Total
	sub.Status = task.TaskType.InitialStatus()
	sub.Feedback = nil
	sub.ReviewedAt = nil
}

func nonNilAnswers(a course.Answers) course.Answers {
	if a == nil {
		return course.Answers{}
	}
	return a
}

// ApproveSubmission marks the submission approved and notifies the student.
func ApproveSubmission(db *gorm.DB, id uint, feedback string) (*course.TaskSubmission, error) {
	return review(db, id, course.SubmissionApproved, feedback)
}

// RejectSubmission marks the submission rejected and notifies the student.
func RejectSubmission(db *gorm.DB, id uint, feedback string) (*course.TaskSubmission, error) {
	return review(db, id, course.SubmissionRejected, feedback)
}

func review(db *gorm.DB, id uint, status, feedback string) (*course.TaskSubmission, error) {
	var sub course.TaskSubmission
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Task").First(&sub, id).Error; err != nil {
			return notFoundOr(err, "Submission not found!", "load submission")
		}
		reviewedAt := time.Now()
		sub.Status = status
		sub.Feedback = &feedback
		sub.ReviewedAt = &reviewedAt
		if err := tx.Model(&sub).Select("status", "feedback", "reviewed_at").Updates(&sub).Error; err != nil {
			return fmt.Errorf("update submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	taskTitle := ""
	if sub.Task != nil {
		taskTitle = sub.Task.Title
	}
	title, message := reviewMessage(status, taskTitle, feedback)
	notifySafely(db, sub.UserID, title, message, models.NotificationTask)
	mailUser(db, sub.UserID, title, "<p>"+message+"</p>")
	return &sub, nil
}

func reviewMessage(status, taskTitle, feedback string) (string, string) {
	if status == course.SubmissionApproved {
		return "Your task has been approved! ✅",
			fmt.Sprintf("Your '%s' task was approved by the teacher.", taskTitle)
	}
	return "Your task was returned ❌",
		fmt.Sprintf("Your '%s' task was returned. Please resubmit it. Feedback: %s", taskTitle, feedback)
}

// QuestionDetail reports a stored answer against the live question.
type QuestionDetail struct {
	ID            uint     `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	UserAnswer    *int     `json:"user_answer"`
	IsCorrect     bool     `json:"is_correct"`
}

// SubmissionDetail is a submission with per-question correctness.
type SubmissionDetail struct {
	course.TaskSubmission
	TaskTitle       string           `json:"task_title"`
	TaskType        course.TaskType  `json:"task_type"`
	UserName        string           `json:"user_name"`
	QuestionsDetail []QuestionDetail `json:"questions_detail"`
	// ComputedScore counts correct answers against the current questions. It is for
	// display only; the stored Score stays as submitted.
	ComputedScore int `json:"computed_score"`
}

// DetailWithAnswers recombines the stored answers with the task's questions. Unanswered
// questions are reported as incorrect.
func DetailWithAnswers(db *gorm.DB, id uint) (*SubmissionDetail, error) {
	var sub course.TaskSubmission
	if err := db.Preload("User").Preload("Task").Preload("Task.Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order, id")
	}).First(&sub, id).Error; err != nil {
		return nil, notFoundOr(err, "Submission not found!", "load submission")
	}

	detail := &SubmissionDetail{TaskSubmission: sub, QuestionsDetail: []QuestionDetail{}}
	if sub.User != nil {
		detail.UserName = sub.User.Username
	}
	if sub.Task == nil {
		return detail, nil
	}
	detail.TaskTitle = sub.Task.Title
	detail.TaskType = sub.Task.TaskType

	answers := sub.AnswerMap()
	for _, q := range sub.Task.Questions {
		qd := QuestionDetail{
			ID:            q.ID,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		}
		if selected, ok := answers[strconv.FormatUint(uint64(q.ID), 10)]; ok {
			sel := selected
			qd.UserAnswer = &sel
			qd.IsCorrect = sel == q.CorrectAnswer
		}
		if qd.IsCorrect {
			detail.ComputedScore++
		}
		detail.QuestionsDetail = append(detail.QuestionsDetail, qd)
	}
	return detail, nil
}

type TaskStats struct {
	TotalSubmissions int64   `json:"total_submissions"`
	Pending          int64   `json:"pending"`
	Approved         int64   `json:"approved"`
	Rejected         int64   `json:"rejected"`
	AverageScore     float64 `json:"average_score"`
}

// GetTaskStats counts submissions by status and averages the percentage score over
// submissions with a positive total.
func GetTaskStats(db *gorm.DB, taskID uint) (*TaskStats, error) {
	if err := mustExist(db, &course.Task{}, taskID, "Task not found!"); err != nil {
		return nil, err
	}
	stats := &TaskStats{}
	counts, err := countByStatus(db.Where("task_id = ?", taskID))
	if err != nil {
		return nil, err
	}
	stats.Pending = counts[course.SubmissionPending]
	stats.Approved = counts[course.SubmissionApproved]
	stats.Rejected = counts[course.SubmissionRejected]
	stats.TotalSubmissions = stats.Pending + stats.Approved + stats.Rejected

	var scored []course.TaskSubmission
	if err := db.Select("score", "total").Where("task_id = ? AND total > 0", taskID).Find(&scored).Error; err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	stats.AverageScore = averagePercent(scored)
	return stats, nil
}

func averagePercent(subs []course.TaskSubmission) float64 {
	if len(subs) == 0 {
		return 0
	}
	var sum float64
	for _, s := range subs {
		sum += float64(s.Score) / float64(s.Total) * 100
	}
	return math.Round(sum/float64(len(subs))*10) / 10
}

// countByStatus groups the submissions selected by scope by status.
func countByStatus(scope *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := scope.Model(&course.TaskSubmission{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
