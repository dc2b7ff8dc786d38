package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/irisvest/backend/internal/apperr"
	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/store"
)

// Pusher dispatches a push message to one device. Delivery is best-effort;
// implementations must not block the caller on retries.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, typ models.NotificationType, data map[string]string) error
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	// Create fans an event out to recipientIDs. It returns false (without
	// error) when nobody is left to notify after stub, deleted and muted
	// recipients are filtered.
	Create(ctx context.Context, actor *models.User, typ models.NotificationType, recipientIDs []primitive.ObjectID, data models.NotificationData) (bool, error)
	FindByRecipient(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error)
	Read(ctx context.Context, userID primitive.ObjectID, notificationID *primitive.ObjectID) error
	Seen(ctx context.Context, userID primitive.ObjectID, notificationID *primitive.ObjectID) error
	Badge(ctx context.Context, userID primitive.ObjectID) (int, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	notifications store.Collection
	users         store.Collection
	pusher        Pusher
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(notifications, users store.Collection, pusher Pusher) *MongoNotificationRepository {
	return &MongoNotificationRepository{
		notifications: notifications,
		users:         users,
		pusher:        pusher,
	}
}

// Create resolves the recipients to live non-stub users, drops anyone who
// muted the subject post, persists one record per remaining recipient in a
// single batch, bumps their badges in one batch update and dispatches push
// messages. Push failures are logged, never propagated.
func (r *MongoNotificationRepository) Create(ctx context.Context, actor *models.User, typ models.NotificationType, recipientIDs []primitive.ObjectID, data models.NotificationData) (bool, error) {
	if len(recipientIDs) == 0 {
		return false, nil
	}

	var recipients []models.User
	filter := bson.M{
		"_id":        bson.M{"$in": recipientIDs},
		"deleted_at": bson.M{"$exists": false},
		"role":       bson.M{"$ne": models.UserRoleStub},
	}
	if err := r.users.Find(ctx, filter, &recipients); err != nil {
		return false, err
	}
	if len(recipients) == 0 {
		log.Printf("notification %s from %s: no live recipients", typ, actor.ID.Hex())
		return false, nil
	}

	body := notificationBody(actor, typ)
	now := time.Now()
	var docs []any
	var keptIDs []primitive.ObjectID
	var tokens []string
	for _, recipient := range recipients {
		if data.PostID != nil && containsID(recipient.MutedPostIDs, *data.PostID) {
			continue
		}
		docs = append(docs, &models.Notification{
			ID:        primitive.NewObjectID(),
			Type:      typ,
			UserID:    recipient.ID,
			ActorID:   actor.ID,
			Body:      body,
			IsNew:     true,
			IsRead:    false,
			Data:      data,
			CreatedAt: now,
			UpdatedAt: now,
		})
		keptIDs = append(keptIDs, recipient.ID)
		tokens = append(tokens, recipient.DeviceTokens...)
	}
	if len(docs) == 0 {
		return false, nil
	}

	if err := r.notifications.InsertMany(ctx, docs); err != nil {
		return false, apperr.Internal("insert notifications: %v", err)
	}
	if _, err := r.users.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": keptIDs}}, bson.M{
		"$inc": bson.M{"notification_badge": 1},
	}); err != nil {
		return false, apperr.Internal("update notification badges: %v", err)
	}

	pushData := map[string]string{}
	if data.PostID != nil {
		pushData["post_id"] = data.PostID.Hex()
	}
	if data.CommentID != nil {
		pushData["comment_id"] = data.CommentID.Hex()
	}
	for _, token := range tokens {
		if err := r.pusher.Send(ctx, token, "Irisvest", body, typ, pushData); err != nil {
			log.Printf("push %s to device failed: %v", typ, err)
		}
	}
	return true, nil
}

func notificationBody(actor *models.User, typ models.NotificationType) string {
	name := actor.FirstName + " " + actor.LastName
	switch typ {
	case models.NotificationFollowedByUser:
		return fmt.Sprintf("%s is now following you", name)
	case models.NotificationFollowedByCompany:
		return fmt.Sprintf("%s is now following you", name)
	case models.NotificationLikePost:
		return fmt.Sprintf("%s liked your post", name)
	case models.NotificationCommentPost:
		return fmt.Sprintf("%s commented on your post", name)
	case models.NotificationSharePost:
		return fmt.Sprintf("%s shared your post", name)
	case models.NotificationTaggedInPost:
		return fmt.Sprintf("%s tagged you in a post", name)
	case models.NotificationTaggedInComment:
		return fmt.Sprintf("%s tagged you in a comment", name)
	default:
		return name
	}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// FindByRecipient returns the user's notifications, newest first
func (r *MongoNotificationRepository) FindByRecipient(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	var notifications []models.Notification
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if err := r.notifications.Find(ctx, bson.M{"user_id": userID}, &notifications, opts); err != nil {
		return nil, err
	}
	return notifications, nil
}

// Read marks one notification (or, with a nil id, all of the user's unread
// ones) read and not-new. The badge drops by the number of notifications
// that were still new-and-unread before the update; the update's own
// modified count is not a reliable proxy for that.
func (r *MongoNotificationRepository) Read(ctx context.Context, userID primitive.ObjectID, notificationID *primitive.ObjectID) error {
	filter := bson.M{"user_id": userID}
	if notificationID != nil {
		filter["_id"] = *notificationID
	} else {
		filter["is_read"] = false
	}

	badgeFilter := bson.M{"user_id": userID, "is_new": true, "is_read": false}
	if notificationID != nil {
		badgeFilter["_id"] = *notificationID
	}
	badgeDrop, err := r.notifications.CountDocuments(ctx, badgeFilter)
	if err != nil {
		return err
	}

	res, err := r.notifications.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"is_read": true, "is_new": false, "updated_at": time.Now()},
	})
	if err != nil {
		return apperr.Internal("update notifications: %v", err)
	}
	if notificationID != nil && res.MatchedCount == 0 {
		return apperr.NotFound("notification %s", notificationID.Hex())
	}

	return r.decrementBadge(ctx, userID, badgeDrop)
}

// Seen marks notifications delivered without touching the read flag. Here
// the update's modified count is exactly the badge drop: already-seen items
// do not match, so they cannot be double-counted.
func (r *MongoNotificationRepository) Seen(ctx context.Context, userID primitive.ObjectID, notificationID *primitive.ObjectID) error {
	filter := bson.M{"user_id": userID, "is_new": true}
	if notificationID != nil {
		filter["_id"] = *notificationID
	}

	res, err := r.notifications.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"is_new": false, "updated_at": time.Now()},
	})
	if err != nil {
		return apperr.Internal("update notifications: %v", err)
	}
	return r.decrementBadge(ctx, userID, res.ModifiedCount)
}

func (r *MongoNotificationRepository) decrementBadge(ctx context.Context, userID primitive.ObjectID, drop int64) error {
	if drop == 0 {
		return nil
	}
	if _, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$inc": bson.M{"notification_badge": -drop},
	}); err != nil {
		return apperr.Internal("update notification badge: %v", err)
	}
	return nil
}

// Badge returns the user's unread badge counter
func (r *MongoNotificationRepository) Badge(ctx context.Context, userID primitive.ObjectID) (int, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": userID}, &user)
	if errors.Is(err, store.ErrNoDocuments) {
		return 0, apperr.NotFound("user %s", userID.Hex())
	}
	if err != nil {
		return 0, err
	}
	return user.NotificationBadge, nil
}
