package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/irisvest/backend/internal/apperr"
	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/store"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	FindByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	Edit(ctx context.Context, id, ownerID primitive.ObjectID, body string) (*models.Comment, error)
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	Like(ctx context.Context, id, userID primitive.ObjectID) error
	Unlike(ctx context.Context, id, userID primitive.ObjectID) error
}

// MongoCommentRepository implements CommentRepository for MongoDB. It keeps
// the parent post's comment_count and comment_ids in step with writes.
type MongoCommentRepository struct {
	comments store.Collection
	posts    store.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(comments, posts store.Collection) *MongoCommentRepository {
	return &MongoCommentRepository{comments: comments, posts: posts}
}

// Create inserts the comment and registers it on the parent post
func (r *MongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	var post models.Post
	err := r.posts.FindOne(ctx, notDeleted(comment.PostID), &post)
	if errors.Is(err, store.ErrNoDocuments) {
		return apperr.Unprocessable("post %s does not exist", comment.PostID.Hex())
	}
	if err != nil {
		return err
	}

	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	if err := r.comments.InsertOne(ctx, comment); err != nil {
		return apperr.Internal("insert comment: %v", err)
	}

	res, err := r.posts.UpdateOne(ctx, notDeleted(comment.PostID), bson.M{
		"$inc":      bson.M{"comment_count": 1},
		"$addToSet": bson.M{"comment_ids": comment.ID},
	})
	if err != nil || res.ModifiedCount == 0 {
		return apperr.Internal("update post %s comment refs: %v", comment.PostID.Hex(), err)
	}
	return nil
}

// FindByID retrieves a live comment by ID
func (r *MongoCommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.comments.FindOne(ctx, notDeleted(id), &comment)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("comment %s", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByPost retrieves a post's live comments in chronological order
func (r *MongoCommentRepository) FindByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	var comments []models.Comment
	filter := bson.M{"post_id": postID, "deleted": bson.M{"$exists": false}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := r.comments.Find(ctx, filter, &comments, opts); err != nil {
		return nil, err
	}
	return comments, nil
}

// Edit updates a comment's body, scoped to its owner
func (r *MongoCommentRepository) Edit(ctx context.Context, id, ownerID primitive.ObjectID, body string) (*models.Comment, error) {
	filter := notDeleted(id)
	filter["user_id"] = ownerID

	var comment models.Comment
	err := r.comments.FindOneAndUpdate(ctx, filter, bson.M{
		"$set": bson.M{"body": body, "updated_at": time.Now()},
	}, &comment)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("comment %s", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete soft-deletes a comment and decrements the parent's comment_count.
// The comment id stays in the parent's comment_ids set; only the counter
// moves.
func (r *MongoCommentRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	filter := notDeleted(id)
	filter["user_id"] = ownerID

	var comment models.Comment
	err := r.comments.FindOneAndUpdate(ctx, filter, bson.M{
		"$set": bson.M{"deleted": true, "updated_at": time.Now()},
	}, &comment)
	if errors.Is(err, store.ErrNoDocuments) {
		return apperr.NotFound("comment %s", id.Hex())
	}
	if err != nil {
		return err
	}

	if _, err := r.posts.UpdateOne(ctx, notDeleted(comment.PostID), bson.M{
		"$inc": bson.M{"comment_count": -1},
	}); err != nil {
		return apperr.Internal("update post %s comment count: %v", comment.PostID.Hex(), err)
	}
	return nil
}

// Like records userID in the comment's like set
func (r *MongoCommentRepository) Like(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.comments.UpdateOne(ctx, notDeleted(id), bson.M{
		"$addToSet": bson.M{"like_ids": userID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("comment %s", id.Hex())
	}
	return nil
}

// Unlike removes userID from the comment's like set
func (r *MongoCommentRepository) Unlike(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.comments.UpdateOne(ctx, notDeleted(id), bson.M{
		"$pull": bson.M{"like_ids": userID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("comment %s", id.Hex())
	}
	return nil
}
