package services

import (
	"fmt"

	"lms/models/course"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// getOrCreateProgress returns the user's progress row, locked for update when the
// driver supports row locks.
func getOrCreateProgress(tx *gorm.DB, userID uint) (*course.StudentProgress, error) {
	p := course.StudentProgress{
		UserID:          userID,
		CompletedVideos: datatypes.JSONSlice[uint]{},
		CompletedTasks:  datatypes.JSONSlice[uint]{},
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create progress: %w", err)
	}

	p = course.StudentProgress{}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if p.CompletedVideos == nil {
		p.CompletedVideos = datatypes.JSONSlice[uint]{}
	}
	if p.CompletedTasks == nil {
		p.CompletedTasks = datatypes.JSONSlice[uint]{}
	}
	return &p, nil
}

// MyProgress returns (creating if needed) the user's progress.
func MyProgress(db *gorm.DB, userID uint) (*course.StudentProgress, error) {
	var p *course.StudentProgress
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = getOrCreateProgress(tx, userID)
		return err
	})
	return p, err
}

// UserProgress returns an existing progress record without creating one.
func UserProgress(db *gorm.DB, userID uint) (*course.StudentProgress, error) {
	var p course.StudentProgress
	if err := db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, notFoundOr(err, "Progress not found", "load progress")
	}
	return &p, nil
}

// CompleteVideo records the video as completed; repeating it is a no-op.
func CompleteVideo(db *gorm.DB, userID, videoID uint) (*course.StudentProgress, error) {
	if err := mustExist(db, &course.Video{}, videoID, "Video not found!"); err != nil {
		return nil, err
	}
	return updateProgress(db, userID, "completed_videos", func(p *course.StudentProgress) bool {
		return p.AddVideo(videoID)
	})
}

// CompleteTask records the task as completed; repeating it is a no-op.
func CompleteTask(db *gorm.DB, userID, taskID uint) (*course.StudentProgress, error) {
	if err := mustExist(db, &course.Task{}, taskID, "Task not found!"); err != nil {
		return nil, err
	}
	return updateProgress(db, userID, "completed_tasks", func(p *course.StudentProgress) bool {
		return p.AddTask(taskID)
	})
}

func updateProgress(db *gorm.DB, userID uint, column string, add func(*course.StudentProgress) bool) (*course.StudentProgress, error) {
	var p *course.StudentProgress
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = getOrCreateProgress(tx, userID)
		if err != nil {
			return err
		}
		if !add(p) {
			return nil
		}
		var value interface{} = p.CompletedVideos
		if column == "completed_tasks" {
			value = p.CompletedTasks
		}
		if err := tx.Model(p).Update(column, value).Error; err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func mustExist(db *gorm.DB, model interface{}, id uint, msg string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check existence: %w", err)
	}
	if count == 0 {
		return NotFound(msg)
	}
	return nil
}
