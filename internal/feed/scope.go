package feed

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/models"
)

// RoleFilter selects which authors a feed request draws from.
type RoleFilter string

const (
	RoleFilterEveryone           RoleFilter = "everyone"
	RoleFilterProfessionalOnly   RoleFilter = "professional-only"
	RoleFilterProfessionalFollow RoleFilter = "professional-follow"
	RoleFilterFollowOnly         RoleFilter = "follow-only"
)

// ParseRoleFilter maps a query value onto a RoleFilter, defaulting to
// everyone for empty input.
func ParseRoleFilter(s string) (RoleFilter, bool) {
	switch RoleFilter(s) {
	case "":
		return RoleFilterEveryone, true
	case RoleFilterEveryone, RoleFilterProfessionalOnly, RoleFilterProfessionalFollow, RoleFilterFollowOnly:
		return RoleFilter(s), true
	}
	return "", false
}

// Scope is the visibility window computed for one feed request: the audience
// tiers the viewer may see and, when Restricted, the authors the request is
// narrowed to. A restricted scope with no authors matches nothing, which is
// the correct outcome for a viewer who follows nobody.
type Scope struct {
	AudienceLevels []models.Audience
	AuthorIDs      []primitive.ObjectID
	Restricted     bool
}

// ResolveScope computes the Scope for a viewer. professionals is the id set
// of all live professional users; it is only consulted for the two
// professional role filters, so callers may pass nil otherwise.
func ResolveScope(viewer *models.User, roleFilter RoleFilter, professionals []primitive.ObjectID) Scope {
	scope := Scope{AudienceLevels: models.AudienceLevelsFor(viewer.Accreditation)}

	switch roleFilter {
	case RoleFilterProfessionalOnly:
		scope.Restricted = true
		scope.AuthorIDs = professionals
	case RoleFilterProfessionalFollow:
		scope.Restricted = true
		scope.AuthorIDs = union(professionals, viewer.Following())
	case RoleFilterFollowOnly:
		scope.Restricted = true
		scope.AuthorIDs = union(nil, viewer.Following())
	}

	if scope.Restricted {
		scope.AuthorIDs = subtract(scope.AuthorIDs, viewer.HiddenUserIDs)
	}
	return scope
}

func union(a, b []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(a)+len(b))
	out := make([]primitive.ObjectID, 0, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func subtract(ids, remove []primitive.ObjectID) []primitive.ObjectID {
	if len(remove) == 0 {
		return ids
	}
	drop := make(map[primitive.ObjectID]struct{}, len(remove))
	for _, id := range remove {
		drop[id] = struct{}{}
	}
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
