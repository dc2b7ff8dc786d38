package feed

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/models"
)

func TestParseRoleFilter(t *testing.T) {
	tests := []struct {
		in     string
		want   RoleFilter
		wantOK bool
	}{
		{"", RoleFilterEveryone, true},
		{"everyone", RoleFilterEveryone, true},
		{"professional-only", RoleFilterProfessionalOnly, true},
		{"professional-follow", RoleFilterProfessionalFollow, true},
		{"follow-only", RoleFilterFollowOnly, true},
		{"friends", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRoleFilter(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseRoleFilter(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestResolveScopeEveryone(t *testing.T) {
	viewer := &models.User{Accreditation: models.AccreditationAccredited}

	scope := ResolveScope(viewer, RoleFilterEveryone, nil)
	if scope.Restricted {
		t.Error("everyone scope should not be restricted")
	}
	want := []models.Audience{models.AudienceEveryone, models.AudienceAccredited}
	if !reflect.DeepEqual(scope.AudienceLevels, want) {
		t.Errorf("AudienceLevels = %v, want %v", scope.AudienceLevels, want)
	}
}

func TestResolveScopeProfessionalFollow(t *testing.T) {
	pro1, pro2 := primitive.NewObjectID(), primitive.NewObjectID()
	followed := primitive.NewObjectID()
	followedCompany := primitive.NewObjectID()
	viewer := &models.User{
		Accreditation:       models.AccreditationNone,
		FollowingIDs:        []primitive.ObjectID{followed, pro1},
		CompanyFollowingIDs: []primitive.ObjectID{followedCompany},
	}

	scope := ResolveScope(viewer, RoleFilterProfessionalFollow, []primitive.ObjectID{pro1, pro2})
	if !scope.Restricted {
		t.Fatal("professional-follow scope should be restricted")
	}
	// Union of professionals and follows, without duplicating pro1.
	want := []primitive.ObjectID{pro1, pro2, followed, followedCompany}
	if !reflect.DeepEqual(scope.AuthorIDs, want) {
		t.Errorf("AuthorIDs = %v, want %v", scope.AuthorIDs, want)
	}
}

func TestResolveScopeFollowOnlyNoFollows(t *testing.T) {
	viewer := &models.User{Accreditation: models.AccreditationPurchaser}

	scope := ResolveScope(viewer, RoleFilterFollowOnly, nil)
	if !scope.Restricted {
		t.Fatal("follow-only scope should be restricted")
	}
	if len(scope.AuthorIDs) != 0 {
		t.Errorf("AuthorIDs = %v, want empty", scope.AuthorIDs)
	}
}

func TestResolveScopeHiddenUsersSubtracted(t *testing.T) {
	kept, hidden := primitive.NewObjectID(), primitive.NewObjectID()
	viewer := &models.User{
		Accreditation: models.AccreditationNone,
		FollowingIDs:  []primitive.ObjectID{kept, hidden},
		HiddenUserIDs: []primitive.ObjectID{hidden},
	}

	scope := ResolveScope(viewer, RoleFilterFollowOnly, nil)
	want := []primitive.ObjectID{kept}
	if !reflect.DeepEqual(scope.AuthorIDs, want) {
		t.Errorf("AuthorIDs = %v, want %v", scope.AuthorIDs, want)
	}

	// Unrestricted scopes leave the hidden set to the query's ignore list.
	scope = ResolveScope(viewer, RoleFilterEveryone, nil)
	if scope.Restricted || scope.AuthorIDs != nil {
		t.Errorf("everyone scope = %+v, want unrestricted with nil authors", scope)
	}
}
