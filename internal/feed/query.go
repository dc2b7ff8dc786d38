package feed

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filters are the caller-supplied feed criteria; the Scope carries the
// authorization-derived part.
type Filters struct {
	Categories []string
	// PostIDs, when set, is an explicit allow-list; the result is exactly
	// that set minus IgnorePostIDs.
	PostIDs       []primitive.ObjectID
	IgnorePostIDs []primitive.ObjectID
	IgnoreUserIDs []primitive.ObjectID
	FeaturedOnly  bool
}

// BuildQuery assembles the Mongo filter for one feed request. Matching is an
// OR of two branches: the viewer's own posts bypass the author restriction,
// everyone else's are gated by audience tier, the eligible-author set and the
// viewer's ignore lists. Both branches require a live, visible post inside
// the pagination window.
func BuildQuery(viewerID primitive.ObjectID, scope Scope, filters Filters, before *primitive.ObjectID) bson.M {
	query := bson.M{
		"visible": true,
		"deleted": bson.M{"$exists": false},
	}

	idCond := bson.M{}
	if len(filters.PostIDs) > 0 {
		idCond["$in"] = subtract(filters.PostIDs, filters.IgnorePostIDs)
	} else if len(filters.IgnorePostIDs) > 0 {
		idCond["$nin"] = filters.IgnorePostIDs
	}
	if before != nil {
		idCond["$lt"] = *before
	}
	if len(idCond) > 0 {
		query["_id"] = idCond
	}

	if len(filters.Categories) > 0 {
		query["categories"] = bson.M{"$in": filters.Categories}
	}
	if filters.FeaturedOnly {
		query["featured"] = true
	}

	self := bson.M{"user_id": viewerID}

	authorCond := bson.M{"$ne": viewerID}
	if scope.Restricted {
		// An empty $in list matches nothing, which is intentional.
		authorCond["$in"] = scope.AuthorIDs
	}
	if len(filters.IgnoreUserIDs) > 0 {
		authorCond["$nin"] = filters.IgnoreUserIDs
	}
	others := bson.M{
		"audience": bson.M{"$in": scope.AudienceLevels},
		"user_id":  authorCond,
	}

	query["$or"] = []bson.M{self, others}
	return query
}
