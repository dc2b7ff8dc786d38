package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a feed post stored in MongoDB. UserID holds the author,
// which is a company id when IsCompany is set. The deleted marker is written
// only on soft delete; live posts never carry the field.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	IsCompany bool               `json:"is_company" bson:"is_company,omitempty"`

	Body       string   `json:"body" bson:"body"`
	MediaURL   string   `json:"media_url,omitempty" bson:"media_url,omitempty"`
	Audience   Audience `json:"audience" bson:"audience"`
	Categories []string `json:"categories,omitempty" bson:"categories,omitempty"`

	// Visible is distinct from deletion; a post pending media transcoding
	// is created invisible and flipped on later.
	Visible bool `json:"visible" bson:"visible"`
	Deleted bool `json:"-" bson:"deleted,omitempty"`

	Featured     bool                `json:"featured,omitempty" bson:"featured,omitempty"`
	SharedPostID *primitive.ObjectID `json:"shared_post_id,omitempty" bson:"shared_post_id,omitempty"`

	// Denormalized counters paired with their id sets.
	LikeIDs      []primitive.ObjectID `json:"like_ids,omitempty" bson:"like_ids,omitempty"`
	LikeCount    int                  `json:"like_count" bson:"like_count"`
	CommentIDs   []primitive.ObjectID `json:"comment_ids,omitempty" bson:"comment_ids,omitempty"`
	CommentCount int                  `json:"comment_count" bson:"comment_count"`
	ShareIDs     []primitive.ObjectID `json:"share_ids,omitempty" bson:"share_ids,omitempty"`
	ShareCount   int                  `json:"share_count" bson:"share_count"`

	ReporterIDs []primitive.ObjectID `json:"-" bson:"reporter_ids,omitempty"`
	MentionIDs  []primitive.ObjectID `json:"mention_ids,omitempty" bson:"mention_ids,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Body       string   `json:"body" validate:"required,min=1,max=4000"`
	MediaURL   string   `json:"media_url,omitempty" validate:"omitempty,url"`
	Audience   string   `json:"audience" validate:"required,oneof=everyone accredited client purchaser"`
	Categories []string `json:"categories,omitempty"`
	CompanyID  string   `json:"company_id,omitempty"`
	MentionIDs []string `json:"mention_ids,omitempty"`
	Visible    *bool    `json:"visible,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Body       string   `json:"body,omitempty" validate:"omitempty,min=1,max=4000"`
	MediaURL   string   `json:"media_url,omitempty" validate:"omitempty,url"`
	Audience   string   `json:"audience,omitempty" validate:"omitempty,oneof=everyone accredited client purchaser"`
	Categories []string `json:"categories,omitempty"`
	MentionIDs []string `json:"mention_ids,omitempty"`
}

// SharePostRequest defines the request body for sharing an existing post.
// Audience and categories are inherited from the original, not chosen here.
type SharePostRequest struct {
	Body      string `json:"body,omitempty" validate:"omitempty,max=4000"`
	CompanyID string `json:"company_id,omitempty"`
}

type SetPostVisibleRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

type FeaturePostRequest struct {
	Feature *bool `json:"feature" validate:"required"`
}
