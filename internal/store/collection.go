package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoDocuments is returned by FindOne and FindOneAndUpdate when the filter
// matches nothing.
var ErrNoDocuments = mongo.ErrNoDocuments

// Collection is the subset of a MongoDB collection the repositories use.
// Keeping it narrow lets tests swap in the in-memory implementation under
// storetest.
type Collection interface {
	FindOne(ctx context.Context, filter any, out any) error
	Find(ctx context.Context, filter any, out any, opts ...*options.FindOptions) error
	InsertOne(ctx context.Context, doc any) error
	InsertMany(ctx context.Context, docs []any) error
	UpdateOne(ctx context.Context, filter, update any) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter, update any) (*mongo.UpdateResult, error)
	// FindOneAndUpdate applies update and decodes the post-update document
	// into out.
	FindOneAndUpdate(ctx context.Context, filter, update any, out any) error
	CountDocuments(ctx context.Context, filter any) (int64, error)
}

type mongoCollection struct {
	coll *mongo.Collection
}

// Wrap adapts a *mongo.Collection to the Collection interface.
func Wrap(coll *mongo.Collection) Collection {
	return &mongoCollection{coll: coll}
}

func (c *mongoCollection) FindOne(ctx context.Context, filter any, out any) error {
	return c.coll.FindOne(ctx, filter).Decode(out)
}

func (c *mongoCollection) Find(ctx context.Context, filter any, out any, opts ...*options.FindOptions) error {
	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc any) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return err
}

func (c *mongoCollection) InsertMany(ctx context.Context, docs []any) error {
	_, err := c.coll.InsertMany(ctx, docs)
	return err
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter, update any) (*mongo.UpdateResult, error) {
	return c.coll.UpdateOne(ctx, filter, update)
}

func (c *mongoCollection) UpdateMany(ctx context.Context, filter, update any) (*mongo.UpdateResult, error) {
	return c.coll.UpdateMany(ctx, filter, update)
}

func (c *mongoCollection) FindOneAndUpdate(ctx context.Context, filter, update any, out any) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return c.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
}

func (c *mongoCollection) CountDocuments(ctx context.Context, filter any) (int64, error) {
	return c.coll.CountDocuments(ctx, filter)
}
