package services_test

import (
	"testing"
	"time"

	"lms/models"
	"lms/services"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPusher struct {
	pushed chan []uint
}

func (p *recordingPusher) Push(_ models.Notification, ids []uint) error {
	p.pushed <- ids
	return nil
}

func TestSendToAllSkipsBlockedAndAdmins(t *testing.T) {
	db := testutil.DB(t)
	for _, name := range []string{"alice", "bob", "carol"} {
		testutil.User(t, db, name)
	}
	blocked := testutil.Blocked(t, db, "mallory")
	admin := testutil.Admin(t, db, "root")

	n, err := services.SendNotification(db, services.SendRequest{
		Title:     "Maintenance",
		Message:   "Tonight at 10pm",
		Type:      models.NotificationWarning,
		SendToAll: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n.SentCount)
	assert.Equal(t, models.NotificationStatusSent, n.Status)

	var deliveries int64
	db.Model(&models.UserNotification{}).Where("notification_id = ?", n.ID).Count(&deliveries)
	assert.EqualValues(t, 3, deliveries)

	for _, u := range []*models.User{blocked, admin} {
		count, err := services.UnreadCount(db, u.ID)
		require.NoError(t, err)
		assert.Zero(t, count, u.Username)
	}

	var recipients int64
	db.Model(&models.NotificationRecipient{}).Where("notification_id = ?", n.ID).Count(&recipients)
	assert.EqualValues(t, 3, recipients)
}

func TestSendToSelectedUsers(t *testing.T) {
	db := testutil.DB(t)
	alice := testutil.User(t, db, "alice")
	bob := testutil.User(t, db, "bob")
	blocked := testutil.Blocked(t, db, "mallory")
	admin := testutil.Admin(t, db, "root")

	pusher := &recordingPusher{pushed: make(chan []uint, 1)}
	services.SetPusher(pusher)
	t.Cleanup(func() { services.SetPusher(nil) })

	n, err := services.SendNotification(db, services.SendRequest{
		Title:   "Hello",
		Message: "Selected users only",
		Type:    models.NotificationInfo,
		UserIDs: []uint{alice.ID, blocked.ID, admin.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n.SentCount)

	select {
	case ids := <-pusher.pushed:
		assert.ElementsMatch(t, []uint{alice.ID, admin.ID}, ids)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not pushed")
	}

	count, err := services.UnreadCount(db, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSendNotificationValidation(t *testing.T) {
	db := testutil.DB(t)

	tests := []struct {
		name  string
		req   services.SendRequest
		field string
	}{
		{name: "no title", req: services.SendRequest{Message: "m", Type: models.NotificationInfo, SendToAll: true}, field: "title"},
		{name: "no message", req: services.SendRequest{Title: "t", Type: models.NotificationInfo, SendToAll: true}, field: "message"},
		{name: "system type", req: services.SendRequest{Title: "t", Message: "m", Type: models.NotificationCourse, SendToAll: true}, field: "type"},
		{name: "no recipients", req: services.SendRequest{Title: "t", Message: "m", Type: models.NotificationInfo}, field: "user_ids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.SendNotification(db, tt.req)
			appErr, ok := services.AsAppError(err)
			require.True(t, ok, "got %v", err)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestScheduledDispatch(t *testing.T) {
	db := testutil.DB(t)
	alice := testutil.User(t, db, "alice")
	testutil.User(t, db, "bob")

	at := time.Now().Add(time.Hour)
	n, err := services.SendNotification(db, services.SendRequest{
		Title:       "Webinar",
		Message:     "Starts soon",
		Type:        models.NotificationInfo,
		SendToAll:   true,
		ScheduledAt: &at,
	})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStatusScheduled, n.Status)
	assert.Zero(t, n.SentCount)

	sent, err := services.DispatchDue(db, time.Now())
	require.NoError(t, err)
	assert.Zero(t, sent, "not due yet")

	// Users created after scheduling are included at dispatch.
	testutil.User(t, db, "carol")

	sent, err = services.DispatchDue(db, at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	var stored models.Notification
	require.NoError(t, db.First(&stored, n.ID).Error)
	assert.Equal(t, models.NotificationStatusSent, stored.Status)
	assert.Equal(t, 3, stored.SentCount)

	sent, err = services.DispatchDue(db, at.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, sent, "already dispatched")

	count, err := services.UnreadCount(db, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestReadState(t *testing.T) {
	db := testutil.DB(t)
	alice := testutil.User(t, db, "alice")
	bob := testutil.User(t, db, "bob")

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := services.NotifyUser(db, alice.ID, title, "body", models.NotificationSystem)
		require.NoError(t, err)
	}
	items, err := services.MyNotifications(db, alice.ID, false)
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.NoError(t, services.MarkAsRead(db, alice.ID, items[0].ID))
	// Marking twice is fine.
	require.NoError(t, services.MarkAsRead(db, alice.ID, items[0].ID))

	err = services.MarkAsRead(db, bob.ID, items[1].ID)
	assert.True(t, services.IsKind(err, services.KindNotFound), "other users' deliveries are invisible")

	unread, err := services.MyNotifications(db, alice.ID, true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	changed, err := services.MarkAllRead(db, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)

	count, err := services.UnreadCount(db, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationStats(t *testing.T) {
	db := testutil.DB(t)
	alice := testutil.User(t, db, "alice")
	testutil.User(t, db, "bob")

	_, err := services.SendNotification(db, services.SendRequest{Title: "t", Message: "m", Type: models.NotificationInfo, SendToAll: true})
	require.NoError(t, err)
	later := time.Now().Add(24 * time.Hour)
	_, err = services.SendNotification(db, services.SendRequest{Title: "t", Message: "m", Type: models.NotificationWarning, SendToAll: true, ScheduledAt: &later})
	require.NoError(t, err)
	_, err = services.MarkAllRead(db, alice.ID)
	require.NoError(t, err)

	stats, err := services.GetNotificationStats(db, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalNotifications)
	assert.EqualValues(t, 1, stats.Scheduled)
	assert.EqualValues(t, 2, stats.TotalDeliveries)
	assert.EqualValues(t, 1, stats.Read)
	assert.EqualValues(t, 1, stats.Unread)
	assert.EqualValues(t, 1, stats.ByType[models.NotificationWarning])
}

func TestSwapPusherWhileNotifying(t *testing.T) {
	db := testutil.DB(t)
	alice := testutil.User(t, db, "alice")
	pusher := &recordingPusher{pushed: make(chan []uint, 16)}
	t.Cleanup(func() { services.SetPusher(nil) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			services.SetPusher(pusher)
			services.SetPusher(nil)
		}
	}()
	for i := 0; i < 5; i++ {
		_, err := services.NotifyUser(db, alice.ID, "Ping", "Swap", models.NotificationSystem)
		require.NoError(t, err)
	}
	<-done

	count, err := services.UnreadCount(db, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}
