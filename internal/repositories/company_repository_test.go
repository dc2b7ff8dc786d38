package repositories

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/apperr"
	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/store/storetest"
)

func TestCompanyMembership(t *testing.T) {
	companies := storetest.NewCollection()
	repo := NewMongoCompanyRepository(companies)
	member := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	company := &models.Company{Name: "Acme Capital", MemberIDs: []primitive.ObjectID{member}}
	if err := repo.Create(context.Background(), company); err != nil {
		t.Fatalf("create: %v", err)
	}

	if ok, _ := repo.IsMember(context.Background(), company.ID, member); !ok {
		t.Error("member not recognized")
	}
	if ok, _ := repo.IsMember(context.Background(), company.ID, outsider); ok {
		t.Error("outsider recognized as member")
	}

	ids, err := repo.FindMemberCompanyIDs(context.Background(), member)
	if err != nil {
		t.Fatalf("FindMemberCompanyIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != company.ID {
		t.Errorf("ids = %v, want [%s]", ids, company.ID.Hex())
	}
	if ids, _ := repo.FindMemberCompanyIDs(context.Background(), outsider); len(ids) != 0 {
		t.Errorf("outsider ids = %v, want none", ids)
	}

	if _, err := repo.FindByID(context.Background(), primitive.NewObjectID()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing company = %v, want ErrNotFound", err)
	}
}
