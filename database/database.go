package database

import (
	"fmt"
	"strings"
	"time"

	"lms/config"
	"lms/logger"
	"lms/models"
	"lms/models/course"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, migrates it and stores the handle globally.
func ConnectDb() error {
	cfg := config.AppConfig

	db, err := Open(cfg.DBDriver, DSN(cfg), cfg.DBLogLevel)
	if err != nil {
		return err
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		return err
	}

	Database = DbInstance{Db: db}
	return nil
}

// DSN builds the connection string for the configured driver unless DB_DSN is set.
func DSN(cfg *config.Config) string {
	if cfg.DBDsn != "" {
		return cfg.DBDsn
	}
	switch cfg.DBDriver {
	case "mysql":
		port := cfg.DBPort
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, port, cfg.DBName)
	case "sqlite":
		name := cfg.DBName
		if !strings.HasSuffix(name, ".db") {
			name += ".db"
		}
		return name
	default:
		port := cfg.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, port)
	}
}

// Open connects with the given driver. Duplicate-key errors are translated to
// gorm.ErrDuplicatedKey so callers can detect uniqueness races.
func Open(driver, dsn, logLevel string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(parseLogLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}
	if driver == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}
	return db, nil
}

func parseLogLevel(level string) gormLogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}

// Migrate performs database migrations
func Migrate(db *gorm.DB) error {
	logger.Info("running migrations")

	if err := db.SetupJoinTable(&models.Notification{}, "Recipients", &models.NotificationRecipient{}); err != nil {
		return fmt.Errorf("setup notification recipients: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&course.Category{},
		&course.Module{},
		&course.Video{},
		&course.Task{},
		&course.TaskQuestion{},
		&course.UserCourse{},
		&course.StudentProgress{},
		&course.TaskSubmission{},
		&models.Payment{},
		&models.Notification{},
		&models.UserNotification{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("migrations completed")
	return nil
}
