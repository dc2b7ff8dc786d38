package repositories

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/irisvest/backend/internal/apperr"
	"github.com/irisvest/backend/internal/feed"
	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/store"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, companyID *primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindByFilters(ctx context.Context, viewerID primitive.ObjectID, scope feed.Scope, filters feed.Filters, before *primitive.ObjectID, limit int64) ([]models.Post, error)
	Edit(ctx context.Context, id, ownerID primitive.ObjectID, req models.UpdatePostRequest) (*models.Post, error)
	Share(ctx context.Context, originalID primitive.ObjectID, share *models.Post, companyID *primitive.ObjectID) error
	SetVisible(ctx context.Context, id, ownerID primitive.ObjectID, visible bool) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID, companyIDs []primitive.ObjectID) error
	Feature(ctx context.Context, id, ownerID primitive.ObjectID, featured bool) error
	Like(ctx context.Context, id, userID primitive.ObjectID) (*models.Post, error)
	Unlike(ctx context.Context, id, userID primitive.ObjectID) (*models.Post, error)
	LogReport(ctx context.Context, id, reporterID primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB. It also touches
// the users and companies collections to keep owner back-references
// (post_ids, post_count) in step with post writes.
type MongoPostRepository struct {
	posts     store.Collection
	users     store.Collection
	companies store.Collection
	rng       *rand.Rand
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(posts, users, companies store.Collection) *MongoPostRepository {
	return &MongoPostRepository{
		posts:     posts,
		users:     users,
		companies: companies,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func notDeleted(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "deleted": bson.M{"$exists": false}}
}

// Create inserts the post and adds the back-reference to the owning user or
// company. These are two sequential writes, not a transaction: a failure on
// the second step surfaces as an internal error with the post already
// inserted.
func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post, companyID *primitive.ObjectID) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	post.LikeCount, post.CommentCount, post.ShareCount = 0, 0, 0

	owner := r.users
	if companyID != nil {
		post.UserID = *companyID
		post.IsCompany = true
		owner = r.companies
	}

	if err := r.posts.InsertOne(ctx, post); err != nil {
		return apperr.Internal("insert post: %v", err)
	}

	inc := 0
	if post.Visible {
		inc = 1
	}
	res, err := owner.UpdateOne(ctx, bson.M{"_id": post.UserID}, bson.M{
		"$inc":      bson.M{"post_count": inc},
		"$addToSet": bson.M{"post_ids": post.ID},
	})
	if err != nil {
		return apperr.Internal("update post owner: %v", err)
	}
	if res.MatchedCount == 0 {
		return apperr.Internal("post owner %s not found", post.UserID.Hex())
	}
	return nil
}

// FindByID retrieves a live post by ID
func (r *MongoPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.posts.FindOne(ctx, notDeleted(id), &post)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("post %s", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindByFilters runs the feed query: reverse-chronological by id, capped at
// limit (0 means unbounded), window starting below the before cursor. On
// first-page fetches a random featured post from the same visibility window
// is spliced in at a fixed slot.
func (r *MongoPostRepository) FindByFilters(ctx context.Context, viewerID primitive.ObjectID, scope feed.Scope, filters feed.Filters, before *primitive.ObjectID, limit int64) ([]models.Post, error) {
	query := feed.BuildQuery(viewerID, scope, filters, before)

	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(limit)
	}

	var posts []models.Post
	if err := r.posts.Find(ctx, query, &posts, findOpts); err != nil {
		return nil, err
	}

	if before == nil && !filters.FeaturedOnly {
		featuredQuery := feed.BuildQuery(viewerID, scope, filters, nil)
		featuredQuery["featured"] = true
		var featured []models.Post
		if err := r.posts.Find(ctx, featuredQuery, &featured); err != nil {
			return nil, err
		}
		posts = feed.InjectHighlight(posts, featured, r.rng)
	}
	return posts, nil
}

// Edit updates an existing post, scoped to its owner
func (r *MongoPostRepository) Edit(ctx context.Context, id, ownerID primitive.ObjectID, req models.UpdatePostRequest) (*models.Post, error) {
	set := bson.M{"updated_at": time.Now()}
	if req.Body != "" {
		set["body"] = req.Body
	}
	if req.MediaURL != "" {
		set["media_url"] = req.MediaURL
	}
	if req.Audience != "" {
		set["audience"] = models.Audience(req.Audience)
	}
	if req.Categories != nil {
		set["categories"] = req.Categories
	}

	filter := notDeleted(id)
	filter["user_id"] = ownerID

	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, &post)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("post %s", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Share creates a new post referencing originalID. The share inherits the
// original's audience and categories; the sharer does not choose them.
func (r *MongoPostRepository) Share(ctx context.Context, originalID primitive.ObjectID, share *models.Post, companyID *primitive.ObjectID) error {
	var original models.Post
	err := r.posts.FindOne(ctx, notDeleted(originalID), &original)
	if errors.Is(err, store.ErrNoDocuments) {
		return apperr.Unprocessable("shared post %s does not exist", originalID.Hex())
	}
	if err != nil {
		return err
	}

	share.Audience = original.Audience
	share.Categories = original.Categories
	share.SharedPostID = &originalID
	if err := r.Create(ctx, share, companyID); err != nil {
		return err
	}

	res, err := r.posts.UpdateOne(ctx, notDeleted(originalID), bson.M{
		"$inc":      bson.M{"share_count": 1},
		"$addToSet": bson.M{"share_ids": share.ID},
	})
	if err != nil {
		return apperr.Internal("update shared post: %v", err)
	}
	if res.ModifiedCount != 1 {
		return apperr.Internal("shared post %s not updated", originalID.Hex())
	}
	return nil
}

// SetVisible toggles the visible flag and moves the owner's post_count with
// it. The owner update matches on the post's user_id, so for company posts
// this is only correct because company posts store the company id there.
func (r *MongoPostRepository) SetVisible(ctx context.Context, id, ownerID primitive.ObjectID, visible bool) error {
	filter := notDeleted(id)
	filter["user_id"] = ownerID

	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, filter, bson.M{
		"$set": bson.M{"visible": visible, "updated_at": time.Now()},
	}, &post)
	if errors.Is(err, store.ErrNoDocuments) {
		return apperr.NotFound("post %s", id.Hex())
	}
	if err != nil {
		return err
	}

	inc := 1
	if !visible {
		inc = -1
	}
	owner := r.users
	if post.IsCompany {
		owner = r.companies
	}
	if _, err := owner.UpdateOne(ctx, bson.M{"_id": post.UserID}, bson.M{"$inc": bson.M{"post_count": inc}}); err != nil {
		return apperr.Internal("update post owner: %v", err)
	}
	return nil
}

// Delete soft-deletes a post. The caller may act for any company it belongs
// to, so ownership is the union of the user id and its company ids.
func (r *MongoPostRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID, companyIDs []primitive.ObjectID) error {
	owners := append([]primitive.ObjectID{ownerID}, companyIDs...)
	filter := notDeleted(id)
	filter["user_id"] = bson.M{"$in": owners}

	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, filter, bson.M{
		"$set": bson.M{"deleted": true, "updated_at": time.Now()},
	}, &post)
	if errors.Is(err, store.ErrNoDocuments) {
		return apperr.NotFound("post %s", id.Hex())
	}
	if err != nil {
		return err
	}

	owner := r.users
	if post.IsCompany {
		owner = r.companies
	}
	if _, err := owner.UpdateOne(ctx, bson.M{"_id": post.UserID}, bson.M{"$inc": bson.M{"post_count": -1}}); err != nil {
		return apperr.Internal("update post owner: %v", err)
	}
	return nil
}

// Feature toggles the featured overlay, scoped to the owner
func (r *MongoPostRepository) Feature(ctx context.Context, id, ownerID primitive.ObjectID, featured bool) error {
	filter := notDeleted(id)
	filter["user_id"] = ownerID
	res, err := r.posts.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"featured": featured, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("post %s", id.Hex())
	}
	return nil
}

// Like records userID in like_ids and bumps like_count. The two writes ride
// in one update but are not mutually guarded: a repeat like leaves the set
// unchanged while the counter still increments.
func (r *MongoPostRepository) Like(ctx context.Context, id, userID primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, notDeleted(id), bson.M{
		"$addToSet": bson.M{"like_ids": userID},
		"$inc":      bson.M{"like_count": 1},
	}, &post)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("post %s", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Unlike removes userID from like_ids and drops like_count
func (r *MongoPostRepository) Unlike(ctx context.Context, id, userID primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.posts.FindOneAndUpdate(ctx, notDeleted(id), bson.M{
		"$pull": bson.M{"like_ids": userID},
		"$inc":  bson.M{"like_count": -1},
	}, &post)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("post %s", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// LogReport adds the reporter to the post's reporter set and appends to the
// reporter's own reported list. The set add is a no-op on a repeat report,
// which surfaces as an unprocessable-entity error rather than a silent
// second success.
func (r *MongoPostRepository) LogReport(ctx context.Context, id, reporterID primitive.ObjectID) error {
	res, err := r.posts.UpdateOne(ctx, notDeleted(id), bson.M{
		"$addToSet": bson.M{"reporter_ids": reporterID},
	})
	if err != nil {
		return apperr.Internal("report post: %v", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("post %s", id.Hex())
	}
	if res.ModifiedCount == 0 {
		return apperr.Unprocessable("post %s already reported", id.Hex())
	}

	if _, err := r.users.UpdateOne(ctx, bson.M{"_id": reporterID}, bson.M{
		"$push": bson.M{"reported_post_ids": id},
	}); err != nil {
		return apperr.Internal("record report: %v", err)
	}
	return nil
}

// Count returns the physical document count, soft-deleted posts included
func (r *MongoPostRepository) Count(ctx context.Context) (int64, error) {
	return r.posts.CountDocuments(ctx, bson.M{})
}
