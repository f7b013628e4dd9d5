package services

import (
	"fmt"
	"strconv"
	"strings"

	"lms/models/course"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionInput is a question as sent by admins, nested in a task or on its own.
type QuestionInput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Order         *int     `json:"order"`
}

// Validate checks the question and that CorrectAnswer indexes Options. prefix scopes
// field names for nested questions.
func (q QuestionInput) Validate(prefix string) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(q.Question) == "" {
		fields[prefix+"question"] = "Question is required!"
	}
	if len(q.Options) < 2 {
		fields[prefix+"options"] = "At least two options are required!"
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		fields[prefix+"correct_answer"] = "Correct answer must be a valid option index!"
	}
	return fields
}

func validateQuestions(qs []QuestionInput) error {
	fields := make(map[string]string)
	for i, q := range qs {
		for k, v := range q.Validate("questions." + strconv.Itoa(i) + ".") {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		return ValidationError("Validation failed!", fields)
	}
	return nil
}

func buildQuestions(taskID uint, qs []QuestionInput) []course.TaskQuestion {
	out := make([]course.TaskQuestion, 0, len(qs))
	for i, q := range qs {
		order := i + 1
		if q.Order != nil {
			order = *q.Order
		}
		out = append(out, course.TaskQuestion{
			TaskID:        taskID,
			Question:      strings.TrimSpace(q.Question),
			Options:       datatypes.JSONSlice[string](q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Order:         order,
		})
	}
	return out
}

// CreateTask stores a task and its questions in one transaction.
func CreateTask(db *gorm.DB, task *course.Task, questions []QuestionInput) (*course.Task, error) {
	if err := validateQuestions(questions); err != nil {
		return nil, err
	}
	task.RequiresApproval = task.TaskType.RequiresApproval()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &course.Video{}, task.VideoID, "Video not found!"); err != nil {
			return err
		}
		if err := tx.Omit("Questions", "Video").Create(task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		if len(questions) == 0 {
			return nil
		}
		qs := buildQuestions(task.ID, questions)
		if err := tx.Create(&qs).Error; err != nil {
			return fmt.Errorf("create questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return LoadTask(db, task.ID)
}

// UpdateTask saves the task; a non-nil questions slice replaces the whole question set.
func UpdateTask(db *gorm.DB, task *course.Task, questions *[]QuestionInput) (*course.Task, error) {
	if questions != nil {
		if err := validateQuestions(*questions); err != nil {
			return nil, err
		}
	}
	task.RequiresApproval = task.TaskType.RequiresApproval()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &course.Video{}, task.VideoID, "Video not found!"); err != nil {
			return err
		}
		if err := tx.Omit("Questions", "Video").Save(task).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if questions == nil {
			return nil
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&course.TaskQuestion{}).Error; err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		if len(*questions) == 0 {
			return nil
		}
		qs := buildQuestions(task.ID, *questions)
		if err := tx.Create(&qs).Error; err != nil {
			return fmt.Errorf("create questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return LoadTask(db, task.ID)
}

// LoadTask returns a task with its ordered questions.
func LoadTask(db *gorm.DB, id uint) (*course.Task, error) {
	var task course.Task
	if err := db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order, id")
	}).First(&task, id).Error; err != nil {
		return nil, notFoundOr(err, "Task not found!", "load task")
	}
	return &task, nil
}

// LinkTaskToVideo copies a task and its questions onto another video. A task with the
// same title already on that video is a conflict.
func LinkTaskToVideo(db *gorm.DB, taskID, videoID uint) (*course.Task, error) {
	src, err := LoadTask(db, taskID)
	if err != nil {
		return nil, err
	}
	var copied course.Task
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &course.Video{}, videoID, "Video not found"); err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&course.Task{}).Where("video_id = ? AND title = ?", videoID, src.Title).Count(&existing).Error; err != nil {
			return fmt.Errorf("check linked task: %w", err)
		}
		if existing > 0 {
			return Conflict("Task already linked to this video")
		}
		copied = course.Task{
			VideoID:           videoID,
			Title:             src.Title,
			Description:       src.Description,
			TaskType:          src.TaskType,
			File:              src.File,
			AllowResubmission: src.AllowResubmission,
			RequiresApproval:  src.RequiresApproval,
		}
		if err := tx.Omit("Questions", "Video").Create(&copied).Error; err != nil {
			return fmt.Errorf("copy task: %w", err)
		}
		if len(src.Questions) == 0 {
			return nil
		}
		qs := make([]course.TaskQuestion, 0, len(src.Questions))
		for _, q := range src.Questions {
			qs = append(qs, course.TaskQuestion{
				TaskID:        copied.ID,
				Question:      q.Question,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
				Order:         q.Order,
			})
		}
		if err := tx.Create(&qs).Error; err != nil {
			return fmt.Errorf("copy questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return LoadTask(db, copied.ID)
}

// OrderUpdate moves one video to a new position.
type OrderUpdate struct {
	ID    uint `json:"id" validate:"required"`
	Order int  `json:"order"`
}

// BulkReorderVideos applies every order update or none.
func BulkReorderVideos(db *gorm.DB, updates []OrderUpdate) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := tx.Model(&course.Video{}).Where("id = ?", u.ID).Update("sort_order", u.Order).Error; err != nil {
				return fmt.Errorf("reorder video %d: %w", u.ID, err)
			}
		}
		return nil
	})
}

// IncrementView bumps the view counter in the database and returns the new value.
func IncrementView(db *gorm.DB, videoID uint) (int64, error) {
	var count int64
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&course.Video{}).Where("id = ?", videoID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("increment view: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFound("Video not found!")
		}
		return tx.Model(&course.Video{}).Where("id = ?", videoID).Pluck("view_count", &count).Error
	})
	return count, err
}

type VideoStats struct {
	ViewCount           int64 `json:"view_count"`
	TaskCount           int64 `json:"task_count"`
	TotalSubmissions    int64 `json:"total_submissions"`
	PendingSubmissions  int64 `json:"pending_submissions"`
	ApprovedSubmissions int64 `json:"approved_submissions"`
	RejectedSubmissions int64 `json:"rejected_submissions"`
}

func GetVideoStats(db *gorm.DB, videoID uint) (*VideoStats, error) {
	var video course.Video
	if err := db.Select("id", "view_count").First(&video, videoID).Error; err != nil {
		return nil, notFoundOr(err, "Video not found!", "load video")
	}
	stats := &VideoStats{ViewCount: video.ViewCount}
	if err := db.Model(&course.Task{}).Where("video_id = ?", videoID).Count(&stats.TaskCount).Error; err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	counts, err := countByStatus(db.Where("task_id IN (?)", db.Model(&course.Task{}).Select("id").Where("video_id = ?", videoID)))
	if err != nil {
		return nil, err
	}
	stats.PendingSubmissions = counts[course.SubmissionPending]
	stats.ApprovedSubmissions = counts[course.SubmissionApproved]
	stats.RejectedSubmissions = counts[course.SubmissionRejected]
	stats.TotalSubmissions = stats.PendingSubmissions + stats.ApprovedSubmissions + stats.RejectedSubmissions
	return stats, nil
}

// CheckVideoModule ensures a video's module, if any, belongs to its category.
func CheckVideoModule(db *gorm.DB, v *course.Video) error {
	if err := mustExist(db, &course.Category{}, v.CategoryID, "Category not found!"); err != nil {
		return err
	}
	if v.ModuleID == nil {
		return nil
	}
	var count int64
	if err := db.Model(&course.Module{}).Where("id = ? AND category_id = ?", *v.ModuleID, v.CategoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("check video module: %w", err)
	}
	if count == 0 {
		return FieldError("module_id", "Module does not belong to this category!")
	}
	return nil
}

// CheckModuleCategory ensures modules are only added to modular categories.
func CheckModuleCategory(db *gorm.DB, categoryID uint) error {
	var category course.Category
	if err := db.Select("id", "is_modular").First(&category, categoryID).Error; err != nil {
		return notFoundOr(err, "Category not found!", "load category")
	}
	if !category.IsModular {
		return FieldError("category_id", "Category is not modular!")
	}
	return nil
}

// AttachVideoCounts fills the derived VideoCount of each category.
func AttachVideoCounts(db *gorm.DB, categories []course.Category) error {
	if len(categories) == 0 {
		return nil
	}
	ids := make([]uint, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	var rows []struct {
		CategoryID uint
		Count      int64
	}
	if err := db.Model(&course.Video{}).
		Select("category_id, count(*) as count").
		Where("category_id IN ?", ids).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("count videos: %w", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}
	for i := range categories {
		categories[i].VideoCount = counts[categories[i].ID]
	}
	return nil
}
