package models

import "fmt"

// Accreditation is an investor accreditation tier. Tiers form a strict total
// order: none < accredited < client < purchaser.
type Accreditation string

const (
	AccreditationNone       Accreditation = "none"
	AccreditationAccredited Accreditation = "accredited"
	AccreditationClient     Accreditation = "client"
	AccreditationPurchaser  Accreditation = "purchaser"
)

var accreditationRank = map[Accreditation]int{
	AccreditationNone:       0,
	AccreditationAccredited: 1,
	AccreditationClient:     2,
	AccreditationPurchaser:  3,
}

func (a Accreditation) rank() int {
	r, ok := accreditationRank[a]
	if !ok {
		// Unknown tiers are a programming error, never caller input.
		panic(fmt.Sprintf("unknown accreditation %q", a))
	}
	return r
}

// CompareAccreditation returns -1, 0 or +1 ordering a against b.
// CompareAccreditation(viewer, required) >= 0 means the viewer may see the
// gated resource.
func CompareAccreditation(a, b Accreditation) int {
	ra, rb := a.rank(), b.rank()
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

// AccreditationsUpTo returns every tier at or below a, in ascending order.
func AccreditationsUpTo(a Accreditation) []Accreditation {
	all := []Accreditation{AccreditationNone, AccreditationAccredited, AccreditationClient, AccreditationPurchaser}
	return all[:a.rank()+1]
}

// Audience states the minimum accreditation tier required to view a post.
// AudienceEveryone is always allowed.
type Audience string

const (
	AudienceEveryone   Audience = "everyone"
	AudienceAccredited Audience = "accredited"
	AudienceClient     Audience = "client"
	AudiencePurchaser  Audience = "purchaser"
)

var audienceRequires = map[Audience]Accreditation{
	AudienceEveryone:   AccreditationNone,
	AudienceAccredited: AccreditationAccredited,
	AudienceClient:     AccreditationClient,
	AudiencePurchaser:  AccreditationPurchaser,
}

// Requires returns the minimum accreditation the audience tier demands. The
// second return is false for an unknown tier.
func (a Audience) Requires() (Accreditation, bool) {
	required, ok := audienceRequires[a]
	return required, ok
}

// AudienceLevelsFor returns the audience tiers a viewer with the given
// accreditation may see. A viewer with no accreditation sees everyone-scoped
// posts only.
func AudienceLevelsFor(a Accreditation) []Audience {
	var levels []Audience
	for _, aud := range []Audience{AudienceEveryone, AudienceAccredited, AudienceClient, AudiencePurchaser} {
		if CompareAccreditation(a, audienceRequires[aud]) >= 0 {
			levels = append(levels, aud)
		}
	}
	return levels
}
