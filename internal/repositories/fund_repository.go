package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/irisvest/backend/internal/apperr"
	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/store"
)

// FundRepository defines the interface for fund data operations
type FundRepository interface {
	FindForViewer(ctx context.Context, id primitive.ObjectID, viewer models.Accreditation) (*models.Fund, error)
	ListForViewer(ctx context.Context, viewer models.Accreditation) ([]models.Fund, error)
}

// MongoFundRepository implements FundRepository for MongoDB
type MongoFundRepository struct {
	funds store.Collection
}

// NewMongoFundRepository creates a new MongoFundRepository
func NewMongoFundRepository(funds store.Collection) *MongoFundRepository {
	return &MongoFundRepository{funds: funds}
}

// FindForViewer retrieves a fund, gated by the viewer's accreditation. A
// viewer below the fund's minimum tier gets an unprocessable-entity error,
// not a not-found: the fund's existence is not a secret, its terms are.
func (r *MongoFundRepository) FindForViewer(ctx context.Context, id primitive.ObjectID, viewer models.Accreditation) (*models.Fund, error) {
	var fund models.Fund
	err := r.funds.FindOne(ctx, bson.M{"_id": id, "deleted_at": bson.M{"$exists": false}}, &fund)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("fund %s", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	if models.CompareAccreditation(viewer, fund.Level) < 0 {
		return nil, apperr.Unprocessable("fund %s requires %s accreditation", id.Hex(), fund.Level)
	}
	return &fund, nil
}

// ListForViewer returns every live fund at or below the viewer's tier
func (r *MongoFundRepository) ListForViewer(ctx context.Context, viewer models.Accreditation) ([]models.Fund, error) {
	var funds []models.Fund
	filter := bson.M{
		"level":      bson.M{"$in": models.AccreditationsUpTo(viewer)},
		"deleted_at": bson.M{"$exists": false},
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if err := r.funds.Find(ctx, filter, &funds, opts); err != nil {
		return nil, err
	}
	return funds, nil
}
