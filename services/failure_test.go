package services_test

import (
	"errors"
	"testing"
	"time"

	"lms/models"
	"lms/models/course"
	"lms/services"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errUnavailable = errors.New("storage unavailable")

// failCreates makes every insert into table fail on db.
func failCreates(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errUnavailable)
		}
	}))
}

// failCounts makes every COUNT over table fail on db.
func failCounts(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:fail_count_"+table, func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*int64); ok && tx.Statement.Table == table {
			_ = tx.AddError(errUnavailable)
		}
	}))
}

func TestNotificationFailureDoesNotFailActions(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")
	flat := testutil.Category(t, db, "Flat", false)
	paid := testutil.Category(t, db, "Paid", false)
	video := testutil.Video(t, db, flat.ID, nil, "Lesson")
	essay := testutil.Task(t, db, video.ID, "Essay", course.TaskText, true)
	upload := testutil.Task(t, db, video.ID, "Upload", course.TaskFile, true)
	failCreates(t, db, "notifications")

	uc, created, err := services.GrantCourse(db, services.GrantRequest{UserID: student.ID, CategoryID: flat.ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, uc.ID)

	p, err := services.CreatePayment(db, services.PaymentInput{UserID: student.ID, CategoryID: &paid.ID, Amount: 10})
	require.NoError(t, err)
	p, err = services.UpdatePaymentStatus(db, p.ID, models.PaymentActive)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentActive, p.Status)

	first, _, err := services.Submit(db, services.SubmitRequest{UserID: student.ID, TaskID: essay.ID, TextContent: "answer"})
	require.NoError(t, err)
	approved, err := services.ApproveSubmission(db, first.ID, "good")
	require.NoError(t, err)
	assert.Equal(t, course.SubmissionApproved, approved.Status)

	second, _, err := services.Submit(db, services.SubmitRequest{UserID: student.ID, TaskID: upload.ID, File: "/uploads/submissions/a.pdf"})
	require.NoError(t, err)
	rejected, err := services.RejectSubmission(db, second.ID, "redo")
	require.NoError(t, err)
	assert.Equal(t, course.SubmissionRejected, rejected.Status)

	var entitlements, notifications int64
	require.NoError(t, db.Model(&course.UserCourse{}).Where("user_id = ?", student.ID).Count(&entitlements).Error)
	require.NoError(t, db.Model(&models.Notification{}).Count(&notifications).Error)
	assert.EqualValues(t, 2, entitlements)
	assert.Zero(t, notifications)

	var stored course.TaskSubmission
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.Equal(t, course.SubmissionApproved, stored.Status)
	require.NotNil(t, stored.Feedback)
	assert.Equal(t, "good", *stored.Feedback)
}

func TestCountFailuresPropagate(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")
	category := testutil.Category(t, db, "Flat", false)
	modular := testutil.Category(t, db, "Modular", true)
	part := testutil.Module(t, db, modular.ID, "Part 1", 1)
	source := testutil.Video(t, db, category.ID, nil, "Source")
	target := testutil.Video(t, db, category.ID, nil, "Target")
	task := testutil.Task(t, db, source.ID, "Quiz", course.TaskTest, false)
	failCounts(t, db, "tasks")
	failCounts(t, db, "modules")
	failCounts(t, db, "user_notifications")

	_, err := services.LinkTaskToVideo(db, task.ID, target.ID)
	require.ErrorIs(t, err, errUnavailable)
	_, ok := services.AsAppError(err)
	assert.False(t, ok, "storage errors are not reported as user errors")

	var linked []course.Task
	require.NoError(t, db.Where("video_id = ?", target.ID).Find(&linked).Error)
	assert.Empty(t, linked)

	_, err = services.GetVideoStats(db, source.ID)
	assert.ErrorIs(t, err, errUnavailable)

	_, err = services.GetDashboardStats(db, time.Now())
	assert.ErrorIs(t, err, errUnavailable)

	_, err = services.GetNotificationStats(db, time.Now())
	assert.ErrorIs(t, err, errUnavailable)

	_, err = services.CreatePayment(db, services.PaymentInput{UserID: student.ID, CategoryID: &modular.ID, ModuleID: &part.ID, Amount: 5})
	require.ErrorIs(t, err, errUnavailable)
	assert.False(t, services.IsKind(err, services.KindValidation))
}
