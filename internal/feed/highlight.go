package feed

import (
	"math/rand"

	"github.com/irisvest/backend/internal/models"
)

// highlightSlot is the zero-based position the featured post is spliced
// into on the first page.
const highlightSlot = 3

// InjectHighlight splices one randomly chosen featured post into posts at a
// fixed slot, deduplicating if the pick already appears in the page. This is
// a merchandising override that intentionally breaks chronological order; it
// runs on first-page fetches only, never on cursor pages.
func InjectHighlight(posts []models.Post, featured []models.Post, rng *rand.Rand) []models.Post {
	if len(featured) == 0 {
		return posts
	}
	pick := featured[rng.Intn(len(featured))]

	out := make([]models.Post, 0, len(posts)+1)
	for _, p := range posts {
		if p.ID != pick.ID {
			out = append(out, p)
		}
	}

	slot := highlightSlot
	if slot > len(out) {
		slot = len(out)
	}
	out = append(out[:slot], append([]models.Post{pick}, out[slot:]...)...)
	return out
}
