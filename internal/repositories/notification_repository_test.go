package repositories

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/apperr"
	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/store/storetest"
)

type sentPush struct {
	token string
	typ   models.NotificationType
}

// recordingPusher captures pushes; failing makes every send error to prove
// delivery stays best-effort.
type recordingPusher struct {
	sent    []sentPush
	failing bool
}

func (p *recordingPusher) Send(_ context.Context, token, _, _ string, typ models.NotificationType, _ map[string]string) error {
	p.sent = append(p.sent, sentPush{token: token, typ: typ})
	if p.failing {
		return errors.New("fcm unavailable")
	}
	return nil
}

type notificationFixture struct {
	repo     *MongoNotificationRepository
	userRepo *MongoUserRepository
	users    *storetest.Collection
	pusher   *recordingPusher
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	notifications := storetest.NewCollection()
	users := storetest.NewCollection()
	pusher := &recordingPusher{}
	return &notificationFixture{
		repo:     NewMongoNotificationRepository(notifications, users, pusher),
		userRepo: NewMongoUserRepository(users, storetest.NewCollection()),
		users:    users,
		pusher:   pusher,
	}
}

func (f *notificationFixture) addUser(t *testing.T, mutate func(*models.User)) *models.User {
	t.Helper()
	user := &models.User{Role: models.UserRoleUser, Accreditation: models.AccreditationNone, FirstName: "Ada", LastName: "Byron"}
	if mutate != nil {
		mutate(user)
	}
	if err := f.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestNotificationFanOut(t *testing.T) {
	f := newNotificationFixture(t)
	actor := f.addUser(t, nil)
	recipient1 := f.addUser(t, func(u *models.User) { u.DeviceTokens = []string{"token-1"} })
	recipient2 := f.addUser(t, func(u *models.User) { u.DeviceTokens = []string{"token-2a", "token-2b"} })

	postID := primitive.NewObjectID()
	sent, err := f.repo.Create(context.Background(), actor, models.NotificationLikePost,
		[]primitive.ObjectID{recipient1.ID, recipient2.ID}, models.NotificationData{PostID: &postID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !sent {
		t.Fatal("expected fan-out to happen")
	}

	for _, id := range []primitive.ObjectID{recipient1.ID, recipient2.ID} {
		notifications, err := f.repo.FindByRecipient(context.Background(), id, 0)
		if err != nil {
			t.Fatalf("FindByRecipient: %v", err)
		}
		if len(notifications) != 1 {
			t.Fatalf("recipient %s has %d notifications, want 1", id.Hex(), len(notifications))
		}
		n := notifications[0]
		if n.Type != models.NotificationLikePost || n.ActorID != actor.ID || !n.IsNew || n.IsRead {
			t.Errorf("notification = %+v", n)
		}
		if badge, _ := f.repo.Badge(context.Background(), id); badge != 1 {
			t.Errorf("badge = %d, want 1", badge)
		}
	}

	if len(f.pusher.sent) != 3 {
		t.Errorf("sent %d pushes, want one per device token", len(f.pusher.sent))
	}
}

func TestNotificationSkipsStubDeletedMuted(t *testing.T) {
	f := newNotificationFixture(t)
	actor := f.addUser(t, nil)
	postID := primitive.NewObjectID()

	stub := f.addUser(t, func(u *models.User) { u.Role = models.UserRoleStub })
	muted := f.addUser(t, func(u *models.User) { u.MutedPostIDs = []primitive.ObjectID{postID} })
	deleted := f.addUser(t, nil)
	if err := f.userRepo.Delete(context.Background(), deleted.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	live := f.addUser(t, nil)

	sent, err := f.repo.Create(context.Background(), actor, models.NotificationCommentPost,
		[]primitive.ObjectID{stub.ID, muted.ID, deleted.ID, live.ID},
		models.NotificationData{PostID: &postID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !sent {
		t.Fatal("the live recipient should still be notified")
	}

	for _, skipped := range []primitive.ObjectID{stub.ID, muted.ID, deleted.ID} {
		notifications, _ := f.repo.FindByRecipient(context.Background(), skipped, 0)
		if len(notifications) != 0 {
			t.Errorf("recipient %s should have been filtered, got %d notifications", skipped.Hex(), len(notifications))
		}
	}
	notifications, _ := f.repo.FindByRecipient(context.Background(), live.ID, 0)
	if len(notifications) != 1 {
		t.Errorf("live recipient has %d notifications, want 1", len(notifications))
	}
}

func TestNotificationNoRecipientsLeft(t *testing.T) {
	f := newNotificationFixture(t)
	actor := f.addUser(t, nil)
	stub := f.addUser(t, func(u *models.User) { u.Role = models.UserRoleStub })

	sent, err := f.repo.Create(context.Background(), actor, models.NotificationFollowedByUser,
		[]primitive.ObjectID{stub.ID}, models.NotificationData{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sent {
		t.Error("nothing should be sent when every recipient is filtered")
	}

	sent, err = f.repo.Create(context.Background(), actor, models.NotificationFollowedByUser, nil, models.NotificationData{})
	if err != nil || sent {
		t.Errorf("empty recipient list: sent = %v, err = %v", sent, err)
	}
}

func TestNotificationPushFailureIsSwallowed(t *testing.T) {
	f := newNotificationFixture(t)
	f.pusher.failing = true
	actor := f.addUser(t, nil)
	recipient := f.addUser(t, func(u *models.User) { u.DeviceTokens = []string{"token-x"} })

	sent, err := f.repo.Create(context.Background(), actor, models.NotificationSharePost,
		[]primitive.ObjectID{recipient.ID}, models.NotificationData{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !sent {
		t.Error("push failure must not fail the fan-out")
	}
	if badge, _ := f.repo.Badge(context.Background(), recipient.ID); badge != 1 {
		t.Errorf("badge = %d, the record and badge land even when push fails", badge)
	}
}

func TestReadDropsBadgeByPriorNewUnread(t *testing.T) {
	f := newNotificationFixture(t)
	actor := f.addUser(t, nil)
	recipient := f.addUser(t, nil)

	for i := 0; i < 3; i++ {
		if _, err := f.repo.Create(context.Background(), actor, models.NotificationLikePost,
			[]primitive.ObjectID{recipient.ID}, models.NotificationData{}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if badge, _ := f.repo.Badge(context.Background(), recipient.ID); badge != 3 {
		t.Fatalf("badge = %d, want 3", badge)
	}

	notifications, _ := f.repo.FindByRecipient(context.Background(), recipient.ID, 0)
	first := notifications[0].ID

	if err := f.repo.Read(context.Background(), recipient.ID, &first); err != nil {
		t.Fatalf("read one: %v", err)
	}
	if badge, _ := f.repo.Badge(context.Background(), recipient.ID); badge != 2 {
		t.Errorf("badge = %d after one read, want 2", badge)
	}

	// Reading the same notification again finds nothing new-and-unread, so
	// the badge holds still.
	if err := f.repo.Read(context.Background(), recipient.ID, &first); err != nil {
		t.Fatalf("repeat read: %v", err)
	}
	if badge, _ := f.repo.Badge(context.Background(), recipient.ID); badge != 2 {
		t.Errorf("badge = %d after repeat read, want 2", badge)
	}

	if err := f.repo.Read(context.Background(), recipient.ID, nil); err != nil {
		t.Fatalf("read all: %v", err)
	}
	if badge, _ := f.repo.Badge(context.Background(), recipient.ID); badge != 0 {
		t.Errorf("badge = %d after read all, want 0", badge)
	}

	missing := primitive.NewObjectID()
	if err := f.repo.Read(context.Background(), recipient.ID, &missing); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("read missing = %v, want ErrNotFound", err)
	}
}

func TestSeenDropsBadgeByModified(t *testing.T) {
	f := newNotificationFixture(t)
	actor := f.addUser(t, nil)
	recipient := f.addUser(t, nil)

	for i := 0; i < 2; i++ {
		if _, err := f.repo.Create(context.Background(), actor, models.NotificationCommentPost,
			[]primitive.ObjectID{recipient.ID}, models.NotificationData{}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := f.repo.Seen(context.Background(), recipient.ID, nil); err != nil {
		t.Fatalf("seen all: %v", err)
	}
	if badge, _ := f.repo.Badge(context.Background(), recipient.ID); badge != 0 {
		t.Errorf("badge = %d after seen, want 0", badge)
	}

	// Already-seen notifications no longer match, so a repeat is a no-op.
	if err := f.repo.Seen(context.Background(), recipient.ID, nil); err != nil {
		t.Fatalf("repeat seen: %v", err)
	}
	if badge, _ := f.repo.Badge(context.Background(), recipient.ID); badge != 0 {
		t.Errorf("badge = %d after repeat seen, want 0", badge)
	}

	// Seen leaves the read flag alone.
	notifications, _ := f.repo.FindByRecipient(context.Background(), recipient.ID, 0)
	for _, n := range notifications {
		if n.IsNew || n.IsRead {
			t.Errorf("notification after seen: is_new = %v, is_read = %v", n.IsNew, n.IsRead)
		}
	}
}

func TestFindByRecipientNewestFirst(t *testing.T) {
	f := newNotificationFixture(t)
	actor := f.addUser(t, nil)
	recipient := f.addUser(t, nil)

	for i := 0; i < 3; i++ {
		if _, err := f.repo.Create(context.Background(), actor, models.NotificationLikePost,
			[]primitive.ObjectID{recipient.ID}, models.NotificationData{}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	notifications, err := f.repo.FindByRecipient(context.Background(), recipient.ID, 2)
	if err != nil {
		t.Fatalf("FindByRecipient: %v", err)
	}
	if len(notifications) != 2 {
		t.Fatalf("got %d notifications, want limit 2", len(notifications))
	}
	if notifications[0].ID.Hex() <= notifications[1].ID.Hex() {
		t.Error("notifications must be newest first")
	}
}
