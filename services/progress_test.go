package services_test

import (
	"testing"

	"lms/services"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteVideoTwice(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")
	category := testutil.Category(t, db, "Flat", false)
	video := testutil.Video(t, db, category.ID, nil, "Lesson")

	for i := 0; i < 2; i++ {
		p, err := services.CompleteVideo(db, student.ID, video.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{video.ID}, []uint(p.CompletedVideos))
		assert.Empty(t, p.CompletedTasks)
	}

	stored, err := services.UserProgress(db, student.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{video.ID}, []uint(stored.CompletedVideos))
}

func TestCompleteTask(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")
	category := testutil.Category(t, db, "Flat", false)
	video := testutil.Video(t, db, category.ID, nil, "Lesson")
	t1 := testutil.Task(t, db, video.ID, "Quiz", "test", true)
	t2 := testutil.Task(t, db, video.ID, "Essay", "text", true)

	_, err := services.CompleteTask(db, student.ID, t1.ID)
	require.NoError(t, err)
	p, err := services.CompleteTask(db, student.ID, t2.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{t1.ID, t2.ID}, []uint(p.CompletedTasks))

	_, err = services.CompleteTask(db, student.ID, 999)
	assert.True(t, services.IsKind(err, services.KindNotFound))
	_, err = services.CompleteVideo(db, student.ID, 999)
	assert.True(t, services.IsKind(err, services.KindNotFound))
}

func TestProgressLookup(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")

	_, err := services.UserProgress(db, student.ID)
	assert.True(t, services.IsKind(err, services.KindNotFound))

	p, err := services.MyProgress(db, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, p.UserID)
	assert.NotNil(t, p.CompletedVideos)

	again, err := services.MyProgress(db, student.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
}
