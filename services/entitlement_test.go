package services_test

import (
	"testing"
	"time"

	"lms/config"
	"lms/models"
	"lms/models/course"
	"lms/services"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantCourseIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")
	category := testutil.Category(t, db, "Go basics", false)

	first, created, err := services.GrantCourse(db, services.GrantRequest{UserID: student.ID, CategoryID: category.ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, course.GrantedByGift, first.GrantedBy)

	second, created, err := services.GrantCourse(db, services.GrantRequest{UserID: student.ID, CategoryID: category.ID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var rows int64
	db.Model(&course.UserCourse{}).Where("user_id = ?", student.ID).Count(&rows)
	assert.EqualValues(t, 1, rows)

	// Only the creating call notifies.
	var notified int64
	db.Model(&models.UserNotification{}).Where("user_id = ?", student.ID).Count(&notified)
	assert.EqualValues(t, 1, notified)
}

func TestGrantCourseValidation(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")
	flat := testutil.Category(t, db, "Flat", false)
	modular := testutil.Category(t, db, "Modular", true)
	other := testutil.Category(t, db, "Other", true)
	foreign := testutil.Module(t, db, other.ID, "Foreign", 1)

	tests := []struct {
		name string
		req  services.GrantRequest
		kind services.ErrorKind
	}{
		{name: "unknown user", req: services.GrantRequest{UserID: 999, CategoryID: flat.ID}, kind: services.KindNotFound},
		{name: "unknown category", req: services.GrantRequest{UserID: student.ID, CategoryID: 999}, kind: services.KindNotFound},
		{name: "bad granted_by", req: services.GrantRequest{UserID: student.ID, CategoryID: flat.ID, GrantedBy: "bribe"}, kind: services.KindValidation},
		{name: "modules on flat category", req: services.GrantRequest{UserID: student.ID, CategoryID: flat.ID, ModuleIDs: []uint{foreign.ID}}, kind: services.KindValidation},
		{name: "module of another category", req: services.GrantRequest{UserID: student.ID, CategoryID: modular.ID, ModuleIDs: []uint{foreign.ID}}, kind: services.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := services.GrantCourse(db, tt.req)
			require.Error(t, err)
			assert.True(t, services.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestHasAccessModular(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")
	category := testutil.Category(t, db, "Trading", true)
	m1 := testutil.Module(t, db, category.ID, "Intro", 1)
	m2 := testutil.Module(t, db, category.ID, "Advanced", 2)
	v1 := testutil.Video(t, db, category.ID, &m1.ID, "Lesson 1")
	v2 := testutil.Video(t, db, category.ID, &m2.ID, "Lesson 2")
	loose := testutil.Video(t, db, category.ID, nil, "Welcome")

	ok, err := services.HasAccess(db, student.ID, v1)
	require.NoError(t, err)
	assert.False(t, ok, "no entitlement yet")

	_, _, err = services.GrantCourse(db, services.GrantRequest{UserID: student.ID, CategoryID: category.ID, ModuleIDs: []uint{m1.ID}})
	require.NoError(t, err)

	for _, tc := range []struct {
		video *course.Video
		want  bool
	}{{v1, true}, {v2, false}, {loose, true}} {
		ok, err := services.HasAccess(db, student.ID, tc.video)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, tc.video.Title)
	}

	// A second grant only adds modules.
	uc, created, err := services.GrantCourse(db, services.GrantRequest{UserID: student.ID, CategoryID: category.ID, ModuleIDs: []uint{m2.ID, m2.ID}})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, uc.Modules, 2)

	ok, err = services.HasAccess(db, student.ID, v2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccessExpiry(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")
	category := testutil.Category(t, db, "Flat", false)
	video := testutil.Video(t, db, category.ID, nil, "Lesson")

	past := time.Now().Add(-time.Hour)
	_, _, err := services.GrantCourse(db, services.GrantRequest{UserID: student.ID, CategoryID: category.ID, ExpiresAt: &past})
	require.NoError(t, err)

	ok, err := services.HasAccess(db, student.ID, video)
	require.NoError(t, err)
	assert.True(t, ok, "expiry is informational unless enforced")

	prev := config.AppConfig.EnforceCourseExpiry
	config.AppConfig.EnforceCourseExpiry = true
	t.Cleanup(func() { config.AppConfig.EnforceCourseExpiry = prev })

	ok, err = services.HasAccess(db, student.ID, video)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMyCourses(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")
	other := testutil.User(t, db, "bob")
	c1 := testutil.Category(t, db, "One", false)
	c2 := testutil.Category(t, db, "Two", false)

	for _, c := range []*course.Category{c1, c2} {
		_, _, err := services.GrantCourse(db, services.GrantRequest{UserID: student.ID, CategoryID: c.ID})
		require.NoError(t, err)
	}
	_, _, err := services.GrantCourse(db, services.GrantRequest{UserID: other.ID, CategoryID: c1.ID})
	require.NoError(t, err)

	items, err := services.MyCourses(db, student.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, uc := range items {
		assert.Equal(t, student.ID, uc.UserID)
		require.NotNil(t, uc.Category)
	}
}

func TestUpdateEntitlement(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.User(t, db, "alice")
	category := testutil.Category(t, db, "Modular", true)
	m1 := testutil.Module(t, db, category.ID, "Part 1", 1)
	uc, _, err := services.GrantCourse(db, services.GrantRequest{UserID: student.ID, CategoryID: category.ID})
	require.NoError(t, err)

	expires := time.Now().Add(24 * time.Hour)
	_, err = services.UpdateEntitlement(db, uc.ID, []uint{m1.ID, 999}, &expires)
	require.Error(t, err)
	appErr, ok := services.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "module_ids")

	var stored course.UserCourse
	require.NoError(t, db.Preload("Modules").First(&stored, uc.ID).Error)
	assert.Nil(t, stored.ExpiresAt)
	assert.Empty(t, stored.Modules)

	updated, err := services.UpdateEntitlement(db, uc.ID, []uint{m1.ID}, &expires)
	require.NoError(t, err)
	require.NotNil(t, updated.ExpiresAt)
	assert.WithinDuration(t, expires, *updated.ExpiresAt, time.Second)
	assert.True(t, updated.HasModule(m1.ID))

	cleared, err := services.UpdateEntitlement(db, uc.ID, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.ExpiresAt)
	assert.True(t, cleared.HasModule(m1.ID), "modules are never removed")

	_, err = services.UpdateEntitlement(db, 999, nil, nil)
	assert.True(t, services.IsKind(err, services.KindNotFound))
}
