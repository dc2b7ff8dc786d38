package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/apperr"
	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/store"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	FindProfessionalIDs(ctx context.Context) ([]primitive.ObjectID, error)
	Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	FollowCompany(ctx context.Context, followerID, companyID primitive.ObjectID) error
	UnfollowCompany(ctx context.Context, followerID, companyID primitive.ObjectID) error
	HidePost(ctx context.Context, userID, postID primitive.ObjectID) error
	HideUser(ctx context.Context, userID, hiddenID primitive.ObjectID) error
	MutePost(ctx context.Context, userID, postID primitive.ObjectID) error
	UnmutePost(ctx context.Context, userID, postID primitive.ObjectID) error
	RegisterDevice(ctx context.Context, userID primitive.ObjectID, token string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoUserRepository implements UserRepository for MongoDB. Company follow
// operations touch the companies collection to mirror the follower side.
type MongoUserRepository struct {
	users     store.Collection
	companies store.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(users, companies store.Collection) *MongoUserRepository {
	return &MongoUserRepository{users: users, companies: companies}
}

func liveUser(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "deleted_at": bson.M{"$exists": false}}
}

// Create inserts a new user
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if err := r.users.InsertOne(ctx, user); err != nil {
		return apperr.Internal("insert user: %v", err)
	}
	return nil
}

// FindByID retrieves a live user by ID
func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, liveUser(id), &user)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("user %s", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves a live user by email
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"email": email, "deleted_at": bson.M{"$exists": false}}, &user)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("user %s", email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByFirebaseUID retrieves a live user by Firebase UID
func (r *MongoUserRepository) FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"firebase_uid": uid, "deleted_at": bson.M{"$exists": false}}, &user)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("firebase user %s", uid)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindProfessionalIDs returns the ids of every live professional user
func (r *MongoUserRepository) FindProfessionalIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	var users []models.User
	filter := bson.M{"role": models.UserRoleProfessional, "deleted_at": bson.M{"$exists": false}}
	if err := r.users.Find(ctx, filter, &users); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

// Follow adds the target to the follower's following set and mirrors the
// follower on the target. Idempotent: a repeat follow is a no-op.
func (r *MongoUserRepository) Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	var target models.User
	err := r.users.FindOne(ctx, liveUser(targetID), &target)
	if errors.Is(err, store.ErrNoDocuments) {
		return apperr.NotFound("user %s", targetID.Hex())
	}
	if err != nil {
		return err
	}
	if target.Role == models.UserRoleStub {
		return apperr.Unprocessable("user %s has not joined yet", targetID.Hex())
	}

	if _, err := r.users.UpdateOne(ctx, liveUser(followerID), bson.M{
		"$addToSet": bson.M{"following_ids": targetID},
	}); err != nil {
		return apperr.Internal("update follower: %v", err)
	}
	if _, err := r.users.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{
		"$addToSet": bson.M{"follower_ids": followerID},
	}); err != nil {
		return apperr.Internal("update followed user: %v", err)
	}
	return nil
}

// Unfollow removes the follow edge from both sides
func (r *MongoUserRepository) Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	if _, err := r.users.UpdateOne(ctx, liveUser(followerID), bson.M{
		"$pull": bson.M{"following_ids": targetID},
	}); err != nil {
		return apperr.Internal("update follower: %v", err)
	}
	if _, err := r.users.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{
		"$pull": bson.M{"follower_ids": followerID},
	}); err != nil {
		return apperr.Internal("update followed user: %v", err)
	}
	return nil
}

// FollowCompany adds a company to the user's company-following set and
// mirrors the follower on the company
func (r *MongoUserRepository) FollowCompany(ctx context.Context, followerID, companyID primitive.ObjectID) error {
	res, err := r.companies.UpdateOne(ctx, bson.M{"_id": companyID, "deleted_at": bson.M{"$exists": false}}, bson.M{
		"$addToSet": bson.M{"follower_ids": followerID},
	})
	if err != nil {
		return apperr.Internal("update company: %v", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("company %s", companyID.Hex())
	}
	if _, err := r.users.UpdateOne(ctx, liveUser(followerID), bson.M{
		"$addToSet": bson.M{"company_following_ids": companyID},
	}); err != nil {
		return apperr.Internal("update follower: %v", err)
	}
	return nil
}

// UnfollowCompany removes the company follow edge from both sides
func (r *MongoUserRepository) UnfollowCompany(ctx context.Context, followerID, companyID primitive.ObjectID) error {
	if _, err := r.companies.UpdateOne(ctx, bson.M{"_id": companyID}, bson.M{
		"$pull": bson.M{"follower_ids": followerID},
	}); err != nil {
		return apperr.Internal("update company: %v", err)
	}
	if _, err := r.users.UpdateOne(ctx, liveUser(followerID), bson.M{
		"$pull": bson.M{"company_following_ids": companyID},
	}); err != nil {
		return apperr.Internal("update follower: %v", err)
	}
	return nil
}

// addToSetOnce runs a single $addToSet and maps the duplicate no-op onto an
// unprocessable-entity error, the same "already handled" signal reports use.
func (r *MongoUserRepository) addToSetOnce(ctx context.Context, userID primitive.ObjectID, field string, value any, what string) error {
	res, err := r.users.UpdateOne(ctx, liveUser(userID), bson.M{
		"$addToSet": bson.M{field: value},
	})
	if err != nil {
		return apperr.Internal("update user: %v", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user %s", userID.Hex())
	}
	if res.ModifiedCount == 0 {
		return apperr.Unprocessable("%s already", what)
	}
	return nil
}

// HidePost removes a post from the user's feed
func (r *MongoUserRepository) HidePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.addToSetOnce(ctx, userID, "hidden_post_ids", postID, "post hidden")
}

// HideUser removes an author from the user's feed
func (r *MongoUserRepository) HideUser(ctx context.Context, userID, hiddenID primitive.ObjectID) error {
	return r.addToSetOnce(ctx, userID, "hidden_user_ids", hiddenID, "user hidden")
}

// MutePost stops notifications for a post without hiding it
func (r *MongoUserRepository) MutePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.addToSetOnce(ctx, userID, "muted_post_ids", postID, "post muted")
}

// UnmutePost re-enables notifications for a post
func (r *MongoUserRepository) UnmutePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	res, err := r.users.UpdateOne(ctx, liveUser(userID), bson.M{
		"$pull": bson.M{"muted_post_ids": postID},
	})
	if err != nil {
		return apperr.Internal("update user: %v", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user %s", userID.Hex())
	}
	if res.ModifiedCount == 0 {
		return apperr.Unprocessable("post %s not muted", postID.Hex())
	}
	return nil
}

// RegisterDevice stores a push token for the user
func (r *MongoUserRepository) RegisterDevice(ctx context.Context, userID primitive.ObjectID, token string) error {
	res, err := r.users.UpdateOne(ctx, liveUser(userID), bson.M{
		"$addToSet": bson.M{"device_tokens": token},
	})
	if err != nil {
		return apperr.Internal("update user: %v", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user %s", userID.Hex())
	}
	return nil
}

// Delete soft-deletes the account; the record stays for back-references
func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.users.UpdateOne(ctx, liveUser(id), bson.M{
		"$set": bson.M{"deleted_at": time.Now(), "updated_at": time.Now()},
	})
	if err != nil {
		return apperr.Internal("delete user: %v", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user %s", id.Hex())
	}
	return nil
}
