package services

import (
	"fmt"
	"time"

	"lms/models"
	"lms/models/course"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalStudents      int64   `json:"total_students"`
	BlockedStudents    int64   `json:"blocked_students"`
	NewStudentsToday   int64   `json:"new_students_today"`
	TotalCategories    int64   `json:"total_categories"`
	TotalVideos        int64   `json:"total_videos"`
	TotalTasks         int64   `json:"total_tasks"`
	PendingSubmissions int64   `json:"pending_submissions"`
	ActiveCourses      int64   `json:"active_courses"`
	RevenueThisMonth   float64 `json:"revenue_this_month"`
}

// GetDashboardStats aggregates the admin overview; day and month windows are taken
// relative to at.
func GetDashboardStats(db *gorm.DB, at time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}
	ref := now.With(at)

	students := func() *gorm.DB {
		return db.Model(&models.User{}).Where("role = ?", models.RoleStudent)
	}
	if err := students().Count(&stats.TotalStudents).Error; err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}

	active := db.Model(&course.UserCourse{})
	if !at.IsZero() {
		active = active.Where("expires_at IS NULL OR expires_at > ?", at)
	}

	counts := []struct {
		name string
		q    *gorm.DB
		dst  *int64
	}{
		{"blocked students", students().Where("is_blocked = ?", true), &stats.BlockedStudents},
		{"new students", students().Where("created_at >= ?", ref.BeginningOfDay()), &stats.NewStudentsToday},
		{"categories", db.Model(&course.Category{}), &stats.TotalCategories},
		{"videos", db.Model(&course.Video{}), &stats.TotalVideos},
		{"tasks", db.Model(&course.Task{}), &stats.TotalTasks},
		{"pending submissions", db.Model(&course.TaskSubmission{}).Where("status = ?", course.SubmissionPending), &stats.PendingSubmissions},
		{"active courses", active, &stats.ActiveCourses},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
	}

	var revenue struct{ Total float64 }
	if err := db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("status = ? AND created_at >= ?", models.PaymentActive, ref.BeginningOfMonth()).
		Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	stats.RevenueThisMonth = revenue.Total
	return stats, nil
}
