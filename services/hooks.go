package services

import (
	"sync"

	"lms/logger"
	"lms/models"

	"gorm.io/gorm"
)

// Mailer delivers best-effort emails for domain events.
type Mailer interface {
	Send(toEmail, toName, subject, html string) error
}

// Pusher forwards a dispatched notification to an external channel.
type Pusher interface {
	Push(n models.Notification, recipientIDs []uint) error
}

type nopMailer struct{}

func (nopMailer) Send(string, string, string, string) error { return nil }

type nopPusher struct{}

func (nopPusher) Push(models.Notification, []uint) error { return nil }

var (
	hooksMu sync.RWMutex
	mailer  Mailer = nopMailer{}
	pusher  Pusher = nopPusher{}
)

func currentHooks() (Mailer, Pusher) {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mailer, pusher
}

// SetMailer installs the mailer used after grants and reviews. nil restores the no-op.
func SetMailer(m Mailer) {
	if m == nil {
		m = nopMailer{}
	}
	hooksMu.Lock()
	mailer = m
	hooksMu.Unlock()
}

// SetPusher installs the channel notifications are forwarded to. nil restores the no-op.
func SetPusher(p Pusher) {
	if p == nil {
		p = nopPusher{}
	}
	hooksMu.Lock()
	pusher = p
	hooksMu.Unlock()
}

func pushAsync(n models.Notification, recipientIDs []uint) {
	_, p := currentHooks()
	if _, ok := p.(nopPusher); ok {
		return
	}
	go func() {
		if err := p.Push(n, recipientIDs); err != nil {
			logger.Warn("notification push failed", "notification_id", n.ID, "error", err)
		}
	}()
}

// mailUser emails a user in the background. Lookup and delivery failures are only logged.
func mailUser(db *gorm.DB, userID uint, subject, html string) {
	m, _ := currentHooks()
	if _, ok := m.(nopMailer); ok {
		return
	}
	var user models.User
	if err := db.Select("id", "email", "username", "first_name", "last_name").First(&user, userID).Error; err != nil {
		logger.Warn("mail recipient lookup failed", "user_id", userID, "error", err)
		return
	}
	if user.Email == "" {
		return
	}
	go func() {
		if err := m.Send(user.Email, user.FullName(), subject, html); err != nil {
			logger.Warn("email delivery failed", "user_id", userID, "subject", subject, "error", err)
		}
	}()
}
