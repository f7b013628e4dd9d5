package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lms/config"
	"lms/models"
	"lms/services"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPusher(t *testing.T) {
	assert.Nil(t, NewWebhookPusher(""))

	received := make(chan webhookPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received <- p
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pusher := NewWebhookPusher(srv.URL)
	n := models.Notification{ID: 9, Title: "Hello", Message: "World", Type: models.NotificationInfo, SentCount: 2}
	require.NoError(t, pusher.Push(n, []uint{3, 4}))

	got := <-received
	assert.Equal(t, uint(9), got.ID)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, []uint{3, 4}, got.Recipients)
	assert.Equal(t, 2, got.SentCount)
}

func TestWebhookPusherRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewWebhookPusher(srv.URL).Push(models.Notification{ID: 1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSendGridMailer(t *testing.T) {
	assert.Nil(t, NewSendGridMailer(&config.Config{EmailSender: "noreply@example.com"}))
	assert.Nil(t, NewSendGridMailer(&config.Config{SendGridAPIKey: "key"}))

	var (
		auth string
		body map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	prev := sendgridHost
	sendgridHost = srv.URL
	t.Cleanup(func() { sendgridHost = prev })

	m := NewSendGridMailer(&config.Config{SendGridAPIKey: "test-key", EmailSender: "noreply@example.com", EmailSenderName: "LMS"})
	require.NotNil(t, m)
	require.NoError(t, m.Send("alice@example.com", "Alice", "Course granted", "<p>Enjoy</p>"))

	assert.Equal(t, "Bearer test-key", auth)
	from := body["from"].(map[string]interface{})
	assert.Equal(t, "noreply@example.com", from["email"])
	personalizations := body["personalizations"].([]interface{})
	require.Len(t, personalizations, 1)
	p := personalizations[0].(map[string]interface{})
	assert.Equal(t, "Course granted", p["subject"])
	content := body["content"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, content["value"], "<p>Enjoy</p>")
}

func TestSendGridMailerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	prev := sendgridHost
	sendgridHost = srv.URL
	t.Cleanup(func() { sendgridHost = prev })

	m := NewSendGridMailer(&config.Config{SendGridAPIKey: "bad", EmailSender: "noreply@example.com"})
	err := m.Send("alice@example.com", "Alice", "Hi", "<p>x</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestRemoveUploadedFile(t *testing.T) {
	prev := config.AppConfig.UploadDir
	config.AppConfig.UploadDir = t.TempDir()
	t.Cleanup(func() { config.AppConfig.UploadDir = prev })

	dir := filepath.Join(config.AppConfig.UploadDir, "videos")
	require.NoError(t, os.MkdirAll(dir, 0755))
	target := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	RemoveUploadedFile("https://cdn.example.com/videos/clip.mp4")
	assert.FileExists(t, target)

	RemoveUploadedFile(GetFileURL("videos/clip.mp4"))
	assert.NoFileExists(t, target)

	assert.Empty(t, GetFileURL(""))
}

func TestSchedulerJobs(t *testing.T) {
	db := testutil.DB(t)
	alice := testutil.User(t, db, "alice")

	c, err := InitializeScheduler(db)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
	<-c.Stop().Done()

	at := time.Now().Add(-time.Minute)
	n := models.Notification{Title: "t", Message: "m", Type: models.NotificationInfo, Status: models.NotificationStatusScheduled, ScheduledAt: &at, TargetAll: true}
	require.NoError(t, db.Create(&n).Error)

	DispatchScheduledNotifications(db)

	var stored models.Notification
	require.NoError(t, db.First(&stored, n.ID).Error)
	assert.Equal(t, models.NotificationStatusSent, stored.Status)
	assert.Equal(t, 1, stored.SentCount)

	past := time.Now().Add(-time.Hour)
	p, err := services.CreatePayment(db, services.PaymentInput{UserID: alice.ID, Status: models.PaymentActive, ExpiresAt: &past})
	require.NoError(t, err)
	ExpirePayments(db)
	require.NoError(t, db.First(p, p.ID).Error)
	assert.Equal(t, models.PaymentExpired, p.Status)
}
