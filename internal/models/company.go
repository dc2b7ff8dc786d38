package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company is an organization that can author posts and run funds. Members
// act on the company's behalf; a company-authored post stores the company id
// in its user_id field.
type Company struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string               `json:"name" bson:"name"`
	About     string               `json:"about,omitempty" bson:"about,omitempty"`
	MemberIDs []primitive.ObjectID `json:"member_ids" bson:"member_ids"`

	FollowerIDs []primitive.ObjectID `json:"follower_ids,omitempty" bson:"follower_ids,omitempty"`
	PostIDs     []primitive.ObjectID `json:"post_ids,omitempty" bson:"post_ids,omitempty"`
	PostCount   int                  `json:"post_count" bson:"post_count"`
	FundIDs     []primitive.ObjectID `json:"fund_ids,omitempty" bson:"fund_ids,omitempty"`

	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
	DeletedAt *time.Time `json:"-" bson:"deleted_at,omitempty"`
}

type CreateCompanyRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	About string `json:"about,omitempty" validate:"omitempty,max=2000"`
}
