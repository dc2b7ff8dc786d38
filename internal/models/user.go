package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole discriminates the user record variants. A stub is a
// pre-registration placeholder invited by email; it is never a valid post
// author or notification recipient.
type UserRole string

const (
	UserRoleUser         UserRole = "user"
	UserRoleProfessional UserRole = "professional"
	UserRoleStub         UserRole = "stub"
)

// User represents a platform member stored in MongoDB.
type User struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"-" bson:"password,omitempty"`
	FirstName     string             `json:"first_name" bson:"first_name,omitempty"`
	LastName      string             `json:"last_name" bson:"last_name,omitempty"`
	Role          UserRole           `json:"role" bson:"role"`
	Accreditation Accreditation      `json:"accreditation" bson:"accreditation"`
	FirebaseUID   string             `json:"firebase_uid,omitempty" bson:"firebase_uid,omitempty"`

	// Social graph.
	FollowingIDs        []primitive.ObjectID `json:"following_ids,omitempty" bson:"following_ids,omitempty"`
	FollowerIDs         []primitive.ObjectID `json:"follower_ids,omitempty" bson:"follower_ids,omitempty"`
	CompanyFollowingIDs []primitive.ObjectID `json:"company_following_ids,omitempty" bson:"company_following_ids,omitempty"`

	// Visibility controls. Hidden content is removed from the feed; muted
	// posts stay visible but stop generating notifications.
	HiddenPostIDs []primitive.ObjectID `json:"hidden_post_ids,omitempty" bson:"hidden_post_ids,omitempty"`
	HiddenUserIDs []primitive.ObjectID `json:"hidden_user_ids,omitempty" bson:"hidden_user_ids,omitempty"`
	MutedPostIDs  []primitive.ObjectID `json:"muted_post_ids,omitempty" bson:"muted_post_ids,omitempty"`

	// Owned content back-references.
	PostIDs   []primitive.ObjectID `json:"post_ids,omitempty" bson:"post_ids,omitempty"`
	PostCount int                  `json:"post_count" bson:"post_count"`

	// ReportedPostIDs is a plain append list, not a set.
	ReportedPostIDs []primitive.ObjectID `json:"-" bson:"reported_post_ids,omitempty"`

	NotificationBadge int      `json:"notification_badge" bson:"notification_badge"`
	DeviceTokens      []string `json:"-" bson:"device_tokens,omitempty"`

	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
	DeletedAt *time.Time `json:"-" bson:"deleted_at,omitempty"`
}

// IsLive reports whether the user can author content and receive
// notifications.
func (u *User) IsLive() bool {
	return u.DeletedAt == nil && u.Role != UserRoleStub
}

// Following returns the union of followed users and followed companies.
func (u *User) Following() []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(u.FollowingIDs)+len(u.CompanyFollowingIDs))
	out = append(out, u.FollowingIDs...)
	out = append(out, u.CompanyFollowingIDs...)
	return out
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"required,min=1,max=50"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type RegisterDeviceRequest struct {
	Token string `json:"token" validate:"required"`
}

// ViewerClaims are custom claims extending standard jwt.RegisteredClaims.
// Every authenticated request carries the viewer's id plus the accreditation
// tier resolved at sign-in.
type ViewerClaims struct {
	UserID        string        `json:"user_id"`
	Accreditation Accreditation `json:"accreditation"`
	jwt.RegisteredClaims
}
