// Package testutil opens throwaway databases and seeds fixtures for tests.
package testutil

import (
	"fmt"
	"testing"

	"lms/config"
	"lms/database"
	"lms/models"
	"lms/models/course"
	"lms/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Password is the plain password of every seeded user.
const Password = "secret123"

// DB returns a migrated in-memory sqlite database that is closed with the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	// Low bcrypt cost keeps seeding fast.
	config.AppConfig.SaltRound = 4

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Open("sqlite", dsn, "silent")
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(tb, database.Migrate(db))
	return db
}

// UseGlobal points database.Database at db for the duration of the test.
func UseGlobal(tb testing.TB, db *gorm.DB) {
	tb.Helper()
	prev := database.Database
	database.Database = database.DbInstance{Db: db}
	tb.Cleanup(func() { database.Database = prev })
}

func User(tb testing.TB, db *gorm.DB, username string) *models.User {
	tb.Helper()
	u, err := services.Register(db, services.RegisterInput{
		Username: username,
		Password: Password,
		Email:    username + "@example.com",
	})
	require.NoError(tb, err)
	return u
}

func Admin(tb testing.TB, db *gorm.DB, username string) *models.User {
	tb.Helper()
	u, err := services.Register(db, services.RegisterInput{
		Username: username,
		Password: Password,
		Role:     models.RoleAdmin,
	})
	require.NoError(tb, err)
	return u
}

func Blocked(tb testing.TB, db *gorm.DB, username string) *models.User {
	tb.Helper()
	u := User(tb, db, username)
	require.NoError(tb, db.Model(u).Update("is_blocked", true).Error)
	u.IsBlocked = true
	return u
}

func Category(tb testing.TB, db *gorm.DB, name string, modular bool) *course.Category {
	tb.Helper()
	c := course.Category{Name: name, IsModular: modular, Price: 100}
	require.NoError(tb, db.Create(&c).Error)
	return &c
}

func Module(tb testing.TB, db *gorm.DB, categoryID uint, title string, order int) *course.Module {
	tb.Helper()
	m := course.Module{CategoryID: categoryID, Title: title, Order: order}
	require.NoError(tb, db.Create(&m).Error)
	return &m
}

// Video creates a video in the category; moduleID may be nil.
func Video(tb testing.TB, db *gorm.DB, categoryID uint, moduleID *uint, title string) *course.Video {
	tb.Helper()
	v := course.Video{
		CategoryID: categoryID,
		ModuleID:   moduleID,
		Title:      title,
		VideoURL:   "https://videos.example.com/" + uuid.NewString(),
	}
	require.NoError(tb, db.Create(&v).Error)
	return &v
}

func Task(tb testing.TB, db *gorm.DB, videoID uint, title string, typ course.TaskType, allowResubmission bool) *course.Task {
	tb.Helper()
	t := course.Task{
		VideoID:           videoID,
		Title:             title,
		TaskType:          typ,
		AllowResubmission: allowResubmission,
		RequiresApproval:  typ.RequiresApproval(),
	}
	require.NoError(tb, db.Omit("Questions", "Video").Create(&t).Error)
	return &t
}

func Question(tb testing.TB, db *gorm.DB, taskID uint, text string, options []string, correct, order int) *course.TaskQuestion {
	tb.Helper()
	q := course.TaskQuestion{
		TaskID:        taskID,
		Question:      text,
		Options:       datatypes.JSONSlice[string](options),
		CorrectAnswer: correct,
		Order:         order,
	}
	require.NoError(tb, db.Create(&q).Error)
	return &q
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
