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

// CompanyRepository defines the interface for company data operations
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error)
	FindMemberCompanyIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	IsMember(ctx context.Context, companyID, userID primitive.ObjectID) (bool, error)
}

// MongoCompanyRepository implements CompanyRepository for MongoDB
type MongoCompanyRepository struct {
	companies store.Collection
}

// NewMongoCompanyRepository creates a new MongoCompanyRepository
func NewMongoCompanyRepository(companies store.Collection) *MongoCompanyRepository {
	return &MongoCompanyRepository{companies: companies}
}

// Create inserts a new company
func (r *MongoCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	company.ID = primitive.NewObjectID()
	company.CreatedAt = time.Now()
	company.UpdatedAt = company.CreatedAt
	if err := r.companies.InsertOne(ctx, company); err != nil {
		return apperr.Internal("insert company: %v", err)
	}
	return nil
}

// FindByID retrieves a live company by ID
func (r *MongoCompanyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	var company models.Company
	err := r.companies.FindOne(ctx, bson.M{"_id": id, "deleted_at": bson.M{"$exists": false}}, &company)
	if errors.Is(err, store.ErrNoDocuments) {
		return nil, apperr.NotFound("company %s", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// FindMemberCompanyIDs returns the ids of every live company the user
// belongs to. Post deletion uses this to let members act for the company.
func (r *MongoCompanyRepository) FindMemberCompanyIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var companies []models.Company
	filter := bson.M{"member_ids": userID, "deleted_at": bson.M{"$exists": false}}
	if err := r.companies.Find(ctx, filter, &companies); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(companies))
	for i, c := range companies {
		ids[i] = c.ID
	}
	return ids, nil
}

// IsMember reports whether userID belongs to the company
func (r *MongoCompanyRepository) IsMember(ctx context.Context, companyID, userID primitive.ObjectID) (bool, error) {
	n, err := r.companies.CountDocuments(ctx, bson.M{
		"_id":        companyID,
		"member_ids": userID,
		"deleted_at": bson.M{"$exists": false},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
