package services

import (
	"fmt"
	"strings"
	"time"

	"lms/logger"
	"lms/models"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// SendRequest is an admin broadcast. With a future ScheduledAt the notification is
// stored and dispatched later by DispatchDue.
type SendRequest struct {
	Title       string
	Message     string
	Type        string
	SendToAll   bool
	UserIDs     []uint
	ScheduledAt *time.Time
}

func (r SendRequest) validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = "Title is required!"
	} else if len(r.Title) > 255 {
		fields["title"] = "Title must be at most 255 characters!"
	}
	if strings.TrimSpace(r.Message) == "" {
		fields["message"] = "Message is required!"
	}
	if !isBroadcastType(r.Type) {
		fields["type"] = fmt.Sprintf("Type must be one of %s!", strings.Join(models.BroadcastTypes, ", "))
	}
	if !r.SendToAll && len(r.UserIDs) == 0 {
		fields["user_ids"] = "Select at least one recipient or set send_to_all!"
	}
	if len(fields) > 0 {
		return ValidationError("Validation failed!", fields)
	}
	return nil
}

func isBroadcastType(t string) bool {
	for _, bt := range models.BroadcastTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// SendNotification validates and dispatches (or schedules) an admin broadcast.
func SendNotification(db *gorm.DB, req SendRequest) (*models.Notification, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	n := models.Notification{
		Title:         strings.TrimSpace(req.Title),
		Message:       req.Message,
		Type:          req.Type,
		Status:        models.NotificationStatusSent,
		TargetAll:     req.SendToAll,
		TargetUserIDs: req.UserIDs,
	}

	if req.ScheduledAt != nil && req.ScheduledAt.After(time.Now()) {
		n.Status = models.NotificationStatusScheduled
		n.ScheduledAt = req.ScheduledAt
		if err := db.Create(&n).Error; err != nil {
			return nil, fmt.Errorf("create scheduled notification: %w", err)
		}
		logger.Info("notification scheduled", "notification_id", n.ID, "scheduled_at", n.ScheduledAt)
		return &n, nil
	}

	var recipientIDs []uint
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&n).Error; err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		users, err := resolveRecipients(tx, req.SendToAll, req.UserIDs)
		if err != nil {
			return err
		}
		recipientIDs, err = fanOut(tx, &n, users)
		return err
	})
	if err != nil {
		return nil, err
	}

	pushAsync(n, recipientIDs)
	return &n, nil
}

// resolveRecipients returns every non-blocked student, or the non-blocked users among ids.
func resolveRecipients(tx *gorm.DB, all bool, ids []uint) ([]models.User, error) {
	var users []models.User
	q := tx.Select("id").Where("is_blocked = ?", false)
	if all {
		q = q.Where("role = ?", models.RoleStudent)
	} else {
		if len(ids) == 0 {
			return nil, nil
		}
		q = q.Where("id IN ?", ids)
	}
	if err := q.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("resolve recipients: %w", err)
	}
	return users, nil
}

// fanOut attaches the recipients, writes one UserNotification each and stamps sent_count.
func fanOut(tx *gorm.DB, n *models.Notification, users []models.User) ([]uint, error) {
	ids := make([]uint, 0, len(users))
	joins := make([]models.NotificationRecipient, 0, len(users))
	deliveries := make([]models.UserNotification, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
		joins = append(joins, models.NotificationRecipient{NotificationID: n.ID, UserID: u.ID})
		deliveries = append(deliveries, models.UserNotification{UserID: u.ID, NotificationID: n.ID})
	}

	if len(users) > 0 {
		if err := tx.CreateInBatches(&joins, 500).Error; err != nil {
			return nil, fmt.Errorf("attach recipients: %w", err)
		}
		if err := tx.CreateInBatches(&deliveries, 500).Error; err != nil {
			return nil, fmt.Errorf("create user notifications: %w", err)
		}
	}

	n.SentCount = len(users)
	n.Status = models.NotificationStatusSent
	if err := tx.Model(n).Updates(map[string]interface{}{
		"sent_count": n.SentCount,
		"status":     n.Status,
	}).Error; err != nil {
		return nil, fmt.Errorf("update sent count: %w", err)
	}
	return ids, nil
}

// NotifyUser delivers a system notification to a single user regardless of their
// blocked state.
func NotifyUser(db *gorm.DB, userID uint, title, message, typ string) (*models.Notification, error) {
	n := models.Notification{
		Title:         title,
		Message:       message,
		Type:          typ,
		Status:        models.NotificationStatusSent,
		TargetUserIDs: []uint{userID},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&n).Error; err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		_, err := fanOut(tx, &n, []models.User{{ID: userID}})
		return err
	})
	if err != nil {
		return nil, err
	}
	pushAsync(n, []uint{userID})
	return &n, nil
}

// notifySafely runs NotifyUser for side effects of another action and only logs failures.
func notifySafely(db *gorm.DB, userID uint, title, message, typ string) {
	if _, err := NotifyUser(db, userID, title, message, typ); err != nil {
		logger.Error("side-effect notification failed", "user_id", userID, "type", typ, "error", err)
	}
}

// DispatchDue sends scheduled notifications whose time has come. Each one is claimed
// by flipping its status so concurrent schedulers never send twice.
func DispatchDue(db *gorm.DB, at time.Time) (int, error) {
	var due []models.Notification
	if err := db.Where("status = ? AND scheduled_at <= ?", models.NotificationStatusScheduled, at).
		Order("scheduled_at").Find(&due).Error; err != nil {
		return 0, fmt.Errorf("find due notifications: %w", err)
	}

	sent := 0
	for i := range due {
		n := due[i]
		var recipientIDs []uint
		claimed := false
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Notification{}).
				Where("id = ? AND status = ?", n.ID, models.NotificationStatusScheduled).
				Update("status", models.NotificationStatusSent)
			if res.Error != nil {
				return fmt.Errorf("claim notification: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return nil
			}
			claimed = true
			users, err := resolveRecipients(tx, n.TargetAll, n.TargetUserIDs)
			if err != nil {
				return err
			}
			recipientIDs, err = fanOut(tx, &n, users)
			return err
		})
		if err != nil {
			logger.Error("scheduled notification dispatch failed", "notification_id", n.ID, "error", err)
			continue
		}
		if claimed {
			sent++
			pushAsync(n, recipientIDs)
		}
	}
	return sent, nil
}

// MyNotifications lists the user's deliveries, newest first.
func MyNotifications(db *gorm.DB, userID uint, unreadOnly bool) ([]models.UserNotification, error) {
	var items []models.UserNotification
	q := db.Preload("Notification").Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if err := q.Order("received_at desc, id desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list user notifications: %w", err)
	}
	return items, nil
}

func UnreadCount(db *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := db.Model(&models.UserNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead marks one of the user's own deliveries as read.
func MarkAsRead(db *gorm.DB, userID, userNotificationID uint) error {
	res := db.Model(&models.UserNotification{}).
		Where("id = ? AND user_id = ?", userNotificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("mark as read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := db.Model(&models.UserNotification{}).Where("id = ? AND user_id = ?", userNotificationID, userID).Count(&exists).Error; err != nil {
			return fmt.Errorf("check notification: %w", err)
		}
		if exists == 0 {
			return NotFound("Notification not found!")
		}
	}
	return nil
}

// MarkAllRead marks every unread delivery of the user and returns how many changed.
func MarkAllRead(db *gorm.DB, userID uint) (int64, error) {
	res := db.Model(&models.UserNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

type NotificationStats struct {
	TotalNotifications int64            `json:"total_notifications"`
	SentToday          int64            `json:"sent_today"`
	Scheduled          int64            `json:"scheduled"`
	TotalDeliveries    int64            `json:"total_deliveries"`
	Read               int64            `json:"read"`
	Unread             int64            `json:"unread"`
	ByType             map[string]int64 `json:"by_type"`
}

func GetNotificationStats(db *gorm.DB, at time.Time) (*NotificationStats, error) {
	stats := &NotificationStats{ByType: map[string]int64{}}
	startOfDay := now.With(at).BeginningOfDay()
	counts := []struct {
		name string
		q    *gorm.DB
		dst  *int64
	}{
		{"notifications", db.Model(&models.Notification{}), &stats.TotalNotifications},
		{"sent today", db.Model(&models.Notification{}).Where("status = ? AND created_at >= ?", models.NotificationStatusSent, startOfDay), &stats.SentToday},
		{"scheduled", db.Model(&models.Notification{}).Where("status = ?", models.NotificationStatusScheduled), &stats.Scheduled},
		{"deliveries", db.Model(&models.UserNotification{}), &stats.TotalDeliveries},
		{"read deliveries", db.Model(&models.UserNotification{}).Where("is_read = ?", true), &stats.Read},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
	}
	stats.Unread = stats.TotalDeliveries - stats.Read

	var rows []struct {
		Type  string
		Count int64
	}
	if err := db.Model(&models.Notification{}).Select("type, count(*) as count").Group("type").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	for _, r := range rows {
		stats.ByType[r.Type] = r.Count
	}
	return stats, nil
}
