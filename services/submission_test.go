package services_test

import (
	"strconv"
	"testing"

	"lms/models"
	"lms/models/course"
	"lms/services"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type submissionFixture struct {
	db      *gorm.DB
	student *models.User
	video   *course.Video
}

func newSubmissionFixture(t *testing.T) submissionFixture {
	t.Helper()
	db := testutil.DB(t)
	category := testutil.Category(t, db, "Flat", false)
	return submissionFixture{
		db:      db,
		student: testutil.User(t, db, "alice"),
		video:   testutil.Video(t, db, category.ID, nil, "Lesson"),
	}
}

func TestSubmitInitialStatus(t *testing.T) {
	f := newSubmissionFixture(t)
	quiz := testutil.Task(t, f.db, f.video.ID, "Quiz", course.TaskTest, false)
	upload := testutil.Task(t, f.db, f.video.ID, "Upload", course.TaskFile, false)
	essay := testutil.Task(t, f.db, f.video.ID, "Essay", course.TaskText, false)

	tests := []struct {
		name string
		req  services.SubmitRequest
		want string
	}{
		{
			name: "test is approved",
			req:  services.SubmitRequest{TaskID: quiz.ID, Answers: course.Answers{"1": 0}, Score: 1, Total: 1},
			want: course.SubmissionApproved,
		},
		{
			name: "file waits for review",
			req:  services.SubmitRequest{TaskID: upload.ID, File: "/uploads/submissions/a.pdf"},
			want: course.SubmissionPending,
		},
		{
			name: "text waits for review",
			req:  services.SubmitRequest{TaskID: essay.ID, TextContent: "My answer"},
			want: course.SubmissionPending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.UserID = f.student.ID
			sub, created, err := services.Submit(f.db, tt.req)
			require.NoError(t, err)
			assert.True(t, created)
			assert.Equal(t, tt.want, sub.Status)
			assert.Nil(t, sub.ReviewedAt)
		})
	}
}

func TestSubmitFirstRequirements(t *testing.T) {
	f := newSubmissionFixture(t)
	quiz := testutil.Task(t, f.db, f.video.ID, "Quiz", course.TaskTest, true)
	upload := testutil.Task(t, f.db, f.video.ID, "Upload", course.TaskFile, true)
	essay := testutil.Task(t, f.db, f.video.ID, "Essay", course.TaskText, true)

	tests := []struct {
		name  string
		req   services.SubmitRequest
		field string
	}{
		{name: "test without answers", req: services.SubmitRequest{TaskID: quiz.ID}, field: "answers"},
		{name: "file without file", req: services.SubmitRequest{TaskID: upload.ID, TextContent: "x"}, field: "file"},
		{name: "text without text", req: services.SubmitRequest{TaskID: essay.ID, TextContent: "   "}, field: "text_content"},
		{name: "score above total", req: services.SubmitRequest{TaskID: quiz.ID, Answers: course.Answers{"1": 0}, Score: 3, Total: 2}, field: "score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.UserID = f.student.ID
			_, _, err := services.Submit(f.db, tt.req)
			appErr, ok := services.AsAppError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, services.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}

	_, _, err := services.Submit(f.db, services.SubmitRequest{UserID: f.student.ID, TaskID: 999, TextContent: "x"})
	assert.True(t, services.IsKind(err, services.KindNotFound))
}

func TestSubmitWithoutResubmission(t *testing.T) {
	f := newSubmissionFixture(t)
	essay := testutil.Task(t, f.db, f.video.ID, "Essay", course.TaskText, false)

	req := services.SubmitRequest{UserID: f.student.ID, TaskID: essay.ID, TextContent: "first"}
	_, _, err := services.Submit(f.db, req)
	require.NoError(t, err)

	req.TextContent = "second"
	_, _, err = services.Submit(f.db, req)
	require.Error(t, err)
	assert.True(t, services.IsKind(err, services.KindConflict))
	assert.Equal(t, "Resubmission not allowed", err.Error())

	var stored course.TaskSubmission
	require.NoError(t, f.db.Where("task_id = ?", essay.ID).First(&stored).Error)
	assert.Equal(t, "first", stored.TextContent)
}

func TestResubmitOverwritesInPlace(t *testing.T) {
	f := newSubmissionFixture(t)
	essay := testutil.Task(t, f.db, f.video.ID, "Essay", course.TaskText, true)

	first, _, err := services.Submit(f.db, services.SubmitRequest{UserID: f.student.ID, TaskID: essay.ID, TextContent: "draft"})
	require.NoError(t, err)
	_, err = services.RejectSubmission(f.db, first.ID, "Too short")
	require.NoError(t, err)

	second, created, err := services.Submit(f.db, services.SubmitRequest{UserID: f.student.ID, TaskID: essay.ID, TextContent: "final"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "final", second.TextContent)
	assert.Equal(t, course.SubmissionPending, second.Status)
	assert.Nil(t, second.Feedback)
	assert.Nil(t, second.ReviewedAt)

	var count int64
	f.db.Model(&course.TaskSubmission{}).Where("user_id = ? AND task_id = ?", f.student.ID, essay.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestResubmitTestTaskStaysApproved(t *testing.T) {
	f := newSubmissionFixture(t)
	quiz := testutil.Task(t, f.db, f.video.ID, "Quiz", course.TaskTest, true)

	first, created, err := services.Submit(f.db, services.SubmitRequest{
		UserID: f.student.ID, TaskID: quiz.ID, Answers: course.Answers{"1": 0}, Score: 3, Total: 5,
	})
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, course.SubmissionApproved, first.Status)

	second, created, err := services.Submit(f.db, services.SubmitRequest{
		UserID: f.student.ID, TaskID: quiz.ID, Answers: course.Answers{"1": 1}, Score: 5, Total: 5,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var stored course.TaskSubmission
	require.NoError(t, f.db.First(&stored, first.ID).Error)
	assert.EqualValues(t, 5, stored.Score)
	assert.EqualValues(t, 5, stored.Total)
	assert.Equal(t, course.SubmissionApproved, stored.Status)
	assert.Equal(t, 1, stored.Answers.Data()["1"])

	var count int64
	require.NoError(t, f.db.Model(&course.TaskSubmission{}).Where("task_id = ?", quiz.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReviewNotifiesOnce(t *testing.T) {
	for _, tc := range []struct {
		name   string
		review func(*gorm.DB, uint, string) (*course.TaskSubmission, error)
		status string
	}{
		{name: "approve", review: services.ApproveSubmission, status: course.SubmissionApproved},
		{name: "reject", review: services.RejectSubmission, status: course.SubmissionRejected},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newSubmissionFixture(t)
			upload := testutil.Task(t, f.db, f.video.ID, "Upload", course.TaskFile, true)
			sub, _, err := services.Submit(f.db, services.SubmitRequest{UserID: f.student.ID, TaskID: upload.ID, File: "/uploads/a.pdf"})
			require.NoError(t, err)

			reviewed, err := tc.review(f.db, sub.ID, "Checked")
			require.NoError(t, err)
			assert.Equal(t, tc.status, reviewed.Status)
			require.NotNil(t, reviewed.ReviewedAt)
			require.NotNil(t, reviewed.Feedback)
			assert.Equal(t, "Checked", *reviewed.Feedback)

			var deliveries []models.UserNotification
			require.NoError(t, f.db.Preload("Notification").Where("user_id = ?", f.student.ID).Find(&deliveries).Error)
			require.Len(t, deliveries, 1)
			assert.Equal(t, models.NotificationTask, deliveries[0].Notification.Type)
			assert.Contains(t, deliveries[0].Notification.Message, "Upload")
		})
	}

	db := testutil.DB(t)
	_, err := services.ApproveSubmission(db, 999, "")
	assert.True(t, services.IsKind(err, services.KindNotFound))
}

func TestDetailWithAnswers(t *testing.T) {
	f := newSubmissionFixture(t)
	quiz := testutil.Task(t, f.db, f.video.ID, "Quiz", course.TaskTest, false)
	q1 := testutil.Question(t, f.db, quiz.ID, "2+2?", []string{"3", "4"}, 1, 1)
	q2 := testutil.Question(t, f.db, quiz.ID, "Capital of France?", []string{"Paris", "Rome"}, 0, 2)
	q3 := testutil.Question(t, f.db, quiz.ID, "Go mascot?", []string{"Gopher", "Crab"}, 0, 3)

	answers := course.Answers{
		strconv.FormatUint(uint64(q1.ID), 10): 1,
		strconv.FormatUint(uint64(q2.ID), 10): 1,
	}
	sub, _, err := services.Submit(f.db, services.SubmitRequest{UserID: f.student.ID, TaskID: quiz.ID, Answers: answers, Score: 3, Total: 3})
	require.NoError(t, err)

	detail, err := services.DetailWithAnswers(f.db, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quiz", detail.TaskTitle)
	assert.Equal(t, course.TaskTest, detail.TaskType)
	assert.Equal(t, "alice", detail.UserName)
	assert.Equal(t, 1, detail.ComputedScore)
	assert.Equal(t, 3, detail.Score, "stored score is left as submitted")

	require.Len(t, detail.QuestionsDetail, 3)
	assert.True(t, detail.QuestionsDetail[0].IsCorrect)
	assert.False(t, detail.QuestionsDetail[1].IsCorrect)
	require.NotNil(t, detail.QuestionsDetail[1].UserAnswer)
	assert.Equal(t, 1, *detail.QuestionsDetail[1].UserAnswer)
	assert.Equal(t, q3.ID, detail.QuestionsDetail[2].ID)
	assert.Nil(t, detail.QuestionsDetail[2].UserAnswer)
	assert.False(t, detail.QuestionsDetail[2].IsCorrect)
}

func TestTaskStats(t *testing.T) {
	f := newSubmissionFixture(t)
	quiz := testutil.Task(t, f.db, f.video.ID, "Quiz", course.TaskTest, false)
	bob := testutil.User(t, f.db, "bob")
	carol := testutil.User(t, f.db, "carol")

	for _, s := range []struct {
		user         *models.User
		score, total int
	}{
		{f.student, 5, 10},
		{bob, 10, 10},
		{carol, 0, 0},
	} {
		_, _, err := services.Submit(f.db, services.SubmitRequest{UserID: s.user.ID, TaskID: quiz.ID, Answers: course.Answers{"1": 0}, Score: s.score, Total: s.total})
		require.NoError(t, err)
	}

	stats, err := services.GetTaskStats(f.db, quiz.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalSubmissions)
	assert.EqualValues(t, 3, stats.Approved)
	assert.Zero(t, stats.Pending)
	assert.InDelta(t, 75.0, stats.AverageScore, 0.001)

	_, err = services.GetTaskStats(f.db, 999)
	assert.True(t, services.IsKind(err, services.KindNotFound))
}
