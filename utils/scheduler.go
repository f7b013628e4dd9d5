package utils

import (
	"time"

	"lms/logger"
	"lms/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeScheduler starts the background jobs: scheduled notifications every minute
// and payment expiry every hour. The returned cron must be stopped on shutdown.
func InitializeScheduler(db *gorm.DB) (*cron.Cron, error) {
	logger.Info("[SCHEDULER] initializing")

	c := cron.New()

	if _, err := c.AddFunc("* * * * *", func() { DispatchScheduledNotifications(db) }); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc("@hourly", func() { ExpirePayments(db) }); err != nil {
		return nil, err
	}

	c.Start()
	logger.Info("[SCHEDULER] started", "jobs", len(c.Entries()))
	return c, nil
}

func DispatchScheduledNotifications(db *gorm.DB) {
	sent, err := services.DispatchDue(db, time.Now())
	if err != nil {
		logger.Error("[SCHEDULER] dispatching notifications failed", "error", err)
		return
	}
	if sent > 0 {
		logger.Info("[SCHEDULER] dispatched scheduled notifications", "count", sent)
	}
}

func ExpirePayments(db *gorm.DB) {
	expired, err := services.ExpirePayments(db, time.Now())
	if err != nil {
		logger.Error("[SCHEDULER] expiring payments failed", "error", err)
		return
	}
	if expired > 0 {
		logger.Info("[SCHEDULER] expired payments", "count", expired)
	}
}
