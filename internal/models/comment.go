package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post. CommentID points to the parent for
// one level of nesting; replies to replies are not supported.
type Comment struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	PostID    primitive.ObjectID  `json:"post_id" bson:"post_id"`
	UserID    primitive.ObjectID  `json:"user_id" bson:"user_id"`
	CommentID *primitive.ObjectID `json:"comment_id,omitempty" bson:"comment_id,omitempty"`

	Body       string               `json:"body" bson:"body"`
	LikeIDs    []primitive.ObjectID `json:"like_ids,omitempty" bson:"like_ids,omitempty"`
	MentionIDs []primitive.ObjectID `json:"mention_ids,omitempty" bson:"mention_ids,omitempty"`
	Deleted    bool                 `json:"-" bson:"deleted,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID     string   `json:"post_id" validate:"required"`
	CommentID  string   `json:"comment_id,omitempty"`
	Body       string   `json:"body" validate:"required,min=1,max=2000"`
	MentionIDs []string `json:"mention_ids,omitempty"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}
