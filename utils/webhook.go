package utils

import (
	"fmt"
	"time"

	"lms/models"

	"github.com/go-resty/resty/v2"
)

// WebhookPusher posts dispatched notifications to an external URL.
type WebhookPusher struct {
	url    string
	client *resty.Client
}

type webhookPayload struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Type         string    `json:"type"`
	SentCount    int       `json:"sent_count"`
	Recipients   []uint    `json:"recipients"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

// NewWebhookPusher returns nil when url is empty.
func NewWebhookPusher(url string) *WebhookPusher {
	if url == "" {
		return nil
	}
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json")
	return &WebhookPusher{url: url, client: client}
}

func (p *WebhookPusher) Push(n models.Notification, recipientIDs []uint) error {
	resp, err := p.client.R().
		SetBody(webhookPayload{
			ID:           n.ID,
			Title:        n.Title,
			Message:      n.Message,
			Type:         n.Type,
			SentCount:    n.SentCount,
			Recipients:   recipientIDs,
			DispatchedAt: time.Now(),
		}).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push notification: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
