package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType enumerates the event kinds that fan out to users.
type NotificationType string

const (
	NotificationFollowedByUser    NotificationType = "followed-by-user"
	NotificationFollowedByCompany NotificationType = "followed-by-company"
	NotificationLikePost          NotificationType = "like-post"
	NotificationCommentPost       NotificationType = "comment-post"
	NotificationSharePost         NotificationType = "share-post"
	NotificationTaggedInPost      NotificationType = "tagged-in-post"
	NotificationTaggedInComment   NotificationType = "tagged-in-comment"
)

// NotificationData is the polymorphic payload keyed by event type.
type NotificationData struct {
	PostID    *primitive.ObjectID `json:"post_id,omitempty" bson:"post_id,omitempty"`
	CommentID *primitive.ObjectID `json:"comment_id,omitempty" bson:"comment_id,omitempty"`
	UserID    *primitive.ObjectID `json:"user_id,omitempty" bson:"user_id,omitempty"`
	CompanyID *primitive.ObjectID `json:"company_id,omitempty" bson:"company_id,omitempty"`
}

// Notification is a per-recipient event record. IsNew tracks whether the
// notification has been delivered to a seen feed; IsRead tracks explicit
// acknowledgement. The two flags move independently.
type Notification struct {
	ID      primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Type    NotificationType   `json:"type" bson:"type"`
	UserID  primitive.ObjectID `json:"user_id" bson:"user_id"`
	ActorID primitive.ObjectID `json:"actor_id" bson:"actor_id"`
	Body    string             `json:"body" bson:"body"`
	IsNew   bool               `json:"is_new" bson:"is_new"`
	IsRead  bool               `json:"is_read" bson:"is_read"`
	Data    NotificationData   `json:"data" bson:"data"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
