package services_test

import (
	"testing"
	"time"

	"lms/models"
	"lms/models/course"
	"lms/services"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionInputValidate(t *testing.T) {
	tests := []struct {
		name  string
		in    services.QuestionInput
		field string
	}{
		{name: "valid", in: services.QuestionInput{Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1}},
		{name: "blank question", in: services.QuestionInput{Question: " ", Options: []string{"a", "b"}}, field: "question"},
		{name: "one option", in: services.QuestionInput{Question: "q", Options: []string{"a"}}, field: "options"},
		{name: "answer out of range", in: services.QuestionInput{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: 2}, field: "correct_answer"},
		{name: "negative answer", in: services.QuestionInput{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: -1}, field: "correct_answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := tt.in.Validate("")
			if tt.field == "" {
				assert.Empty(t, fields)
				return
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestCreateAndUpdateTask(t *testing.T) {
	db := testutil.DB(t)
	category := testutil.Category(t, db, "Flat", false)
	video := testutil.Video(t, db, category.ID, nil, "Lesson")

	task, err := services.CreateTask(db, &course.Task{VideoID: video.ID, Title: "Quiz", TaskType: course.TaskTest}, []services.QuestionInput{
		{Question: "First", Options: []string{"a", "b"}, CorrectAnswer: 0},
		{Question: "Second", Options: []string{"a", "b", "c"}, CorrectAnswer: 2},
	})
	require.NoError(t, err)
	assert.False(t, task.RequiresApproval)
	require.Len(t, task.Questions, 2)
	assert.Equal(t, "First", task.Questions[0].Question)
	assert.Equal(t, 2, task.Questions[1].Order)

	_, err = services.CreateTask(db, &course.Task{VideoID: video.ID, Title: "Bad", TaskType: course.TaskTest}, []services.QuestionInput{
		{Question: "Broken", Options: []string{"a", "b"}, CorrectAnswer: 5},
	})
	appErr, ok := services.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "questions.0.correct_answer")

	_, err = services.CreateTask(db, &course.Task{VideoID: 999, Title: "Orphan", TaskType: course.TaskFile}, nil)
	assert.True(t, services.IsKind(err, services.KindNotFound))

	task.TaskType = course.TaskFile
	task.Questions = nil
	updated, err := services.UpdateTask(db, task, nil)
	require.NoError(t, err)
	assert.True(t, updated.RequiresApproval)
	assert.Len(t, updated.Questions, 2, "nil questions leave the set alone")

	replaced, err := services.UpdateTask(db, updated, &[]services.QuestionInput{
		{Question: "Only", Options: []string{"x", "y"}, CorrectAnswer: 1, Order: testutil.Ptr(7)},
	})
	require.NoError(t, err)
	require.Len(t, replaced.Questions, 1)
	assert.Equal(t, 7, replaced.Questions[0].Order)
}

func TestLinkTaskToVideo(t *testing.T) {
	db := testutil.DB(t)
	category := testutil.Category(t, db, "Flat", false)
	source := testutil.Video(t, db, category.ID, nil, "Source")
	target := testutil.Video(t, db, category.ID, nil, "Target")
	task := testutil.Task(t, db, source.ID, "Quiz", course.TaskTest, false)
	testutil.Question(t, db, task.ID, "q1", []string{"a", "b"}, 1, 1)

	copied, err := services.LinkTaskToVideo(db, task.ID, target.ID)
	require.NoError(t, err)
	assert.NotEqual(t, task.ID, copied.ID)
	assert.Equal(t, target.ID, copied.VideoID)
	assert.Equal(t, "Quiz", copied.Title)
	require.Len(t, copied.Questions, 1)
	assert.Equal(t, 1, copied.Questions[0].CorrectAnswer)

	_, err = services.LinkTaskToVideo(db, task.ID, target.ID)
	assert.True(t, services.IsKind(err, services.KindConflict))

	_, err = services.LinkTaskToVideo(db, task.ID, 999)
	assert.True(t, services.IsKind(err, services.KindNotFound))
}

func TestIncrementViewAndStats(t *testing.T) {
	db := testutil.DB(t)
	category := testutil.Category(t, db, "Flat", false)
	video := testutil.Video(t, db, category.ID, nil, "Lesson")
	essay := testutil.Task(t, db, video.ID, "Essay", course.TaskText, false)
	student := testutil.User(t, db, "alice")

	for want := int64(1); want <= 3; want++ {
		got, err := services.IncrementView(db, video.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := services.IncrementView(db, 999)
	assert.True(t, services.IsKind(err, services.KindNotFound))

	_, _, err = services.Submit(db, services.SubmitRequest{UserID: student.ID, TaskID: essay.ID, TextContent: "answer"})
	require.NoError(t, err)

	stats, err := services.GetVideoStats(db, video.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.ViewCount)
	assert.EqualValues(t, 1, stats.TaskCount)
	assert.EqualValues(t, 1, stats.TotalSubmissions)
	assert.EqualValues(t, 1, stats.PendingSubmissions)
}

func TestBulkReorderVideos(t *testing.T) {
	db := testutil.DB(t)
	category := testutil.Category(t, db, "Flat", false)
	v1 := testutil.Video(t, db, category.ID, nil, "One")
	v2 := testutil.Video(t, db, category.ID, nil, "Two")

	require.NoError(t, services.BulkReorderVideos(db, []services.OrderUpdate{{ID: v1.ID, Order: 2}, {ID: v2.ID, Order: 1}}))

	var ordered []course.Video
	require.NoError(t, db.Where("category_id = ?", category.ID).Order("sort_order").Find(&ordered).Error)
	require.Len(t, ordered, 2)
	assert.Equal(t, v2.ID, ordered[0].ID)
	assert.Equal(t, v1.ID, ordered[1].ID)
}

func TestCatalogChecks(t *testing.T) {
	db := testutil.DB(t)
	flat := testutil.Category(t, db, "Flat", false)
	modular := testutil.Category(t, db, "Modular", true)
	m := testutil.Module(t, db, modular.ID, "Part 1", 1)
	testutil.Video(t, db, modular.ID, &m.ID, "One")
	testutil.Video(t, db, modular.ID, nil, "Two")

	assert.True(t, services.IsKind(services.CheckModuleCategory(db, flat.ID), services.KindValidation))
	assert.NoError(t, services.CheckModuleCategory(db, modular.ID))
	assert.True(t, services.IsKind(services.CheckModuleCategory(db, 999), services.KindNotFound))

	assert.NoError(t, services.CheckVideoModule(db, &course.Video{CategoryID: modular.ID, ModuleID: &m.ID}))
	assert.True(t, services.IsKind(services.CheckVideoModule(db, &course.Video{CategoryID: flat.ID, ModuleID: &m.ID}), services.KindValidation))

	categories := []course.Category{*flat, *modular}
	require.NoError(t, services.AttachVideoCounts(db, categories))
	assert.Zero(t, categories[0].VideoCount)
	assert.EqualValues(t, 2, categories[1].VideoCount)
}

func TestDashboardStats(t *testing.T) {
	db := testutil.DB(t)
	alice := testutil.User(t, db, "alice")
	testutil.Blocked(t, db, "mallory")
	testutil.Admin(t, db, "root")
	category := testutil.Category(t, db, "Flat", false)
	video := testutil.Video(t, db, category.ID, nil, "Lesson")
	essay := testutil.Task(t, db, video.ID, "Essay", course.TaskText, false)

	_, err := services.CreatePayment(db, services.PaymentInput{UserID: alice.ID, CategoryID: &category.ID, Amount: 40, Status: models.PaymentActive})
	require.NoError(t, err)
	_, err = services.CreatePayment(db, services.PaymentInput{UserID: alice.ID, Amount: 15})
	require.NoError(t, err)
	_, _, err = services.Submit(db, services.SubmitRequest{UserID: alice.ID, TaskID: essay.ID, TextContent: "answer"})
	require.NoError(t, err)

	stats, err := services.GetDashboardStats(db, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalStudents)
	assert.EqualValues(t, 1, stats.BlockedStudents)
	assert.EqualValues(t, 1, stats.TotalCategories)
	assert.EqualValues(t, 1, stats.TotalVideos)
	assert.EqualValues(t, 1, stats.TotalTasks)
	assert.EqualValues(t, 1, stats.PendingSubmissions)
	assert.EqualValues(t, 1, stats.ActiveCourses)
	assert.InDelta(t, 40.0, stats.RevenueThisMonth, 0.001)
}
