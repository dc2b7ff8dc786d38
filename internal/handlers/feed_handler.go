package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/feed"
	"github.com/irisvest/backend/internal/repositories"
)

const defaultFeedLimit = 20

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the viewer's feed page. Supported query parameters:
//
//	role        everyone | professional-only | professional-follow | follow-only
//	categories  comma-separated category filter
//	ids         comma-separated post id allow-list
//	before      pagination cursor, the id of the last post of the prior page
//	limit       page size, defaults to 20
//	featured    "true" restricts the page to featured posts
//
// The viewer's hidden posts and hidden users are always excluded. Pages are
// newest-first; the next_cursor in the response feeds the next request's
// before parameter.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewerID, _ := getViewer(c)

	viewer, err := h.userRepository.FindByID(c.Request().Context(), viewerID)
	if err != nil {
		return httpError(err)
	}

	roleFilter, ok := feed.ParseRoleFilter(c.QueryParam("role"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role filter")
	}

	var professionals []primitive.ObjectID
	if roleFilter == feed.RoleFilterProfessionalOnly || roleFilter == feed.RoleFilterProfessionalFollow {
		professionals, err = h.userRepository.FindProfessionalIDs(c.Request().Context())
		if err != nil {
			return httpError(err)
		}
	}
	scope := feed.ResolveScope(viewer, roleFilter, professionals)

	postIDs, err := parseIDList(c.QueryParam("ids"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid ids parameter")
	}
	filters := feed.Filters{
		Categories:    parseCSV(c.QueryParam("categories")),
		PostIDs:       postIDs,
		IgnorePostIDs: viewer.HiddenPostIDs,
		IgnoreUserIDs: viewer.HiddenUserIDs,
		FeaturedOnly:  c.QueryParam("featured") == "true",
	}

	var before *primitive.ObjectID
	if raw := c.QueryParam("before"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid before cursor")
		}
		before = &id
	}

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = defaultFeedLimit
	}

	posts, err := h.postRepository.FindByFilters(c.Request().Context(), viewerID, scope, filters, before, limit)
	if err != nil {
		return httpError(err)
	}

	// The injected highlight can push the page over the limit; the cursor
	// still comes from the chronological tail.
	var nextCursor string
	if int64(len(posts)) >= limit && len(posts) > 0 {
		nextCursor = posts[len(posts)-1].ID.Hex()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"posts":       posts,
		"next_cursor": nextCursor,
	})
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIDList(s string) ([]primitive.ObjectID, error) {
	return parseObjectIDs(parseCSV(s))
}
