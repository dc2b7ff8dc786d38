package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/repositories"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	notifier
	postRepository    repositories.PostRepository
	companyRepository repositories.CompanyRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, companyRepo repositories.CompanyRepository, notificationRepo repositories.NotificationRepository) *PostHandler {
	return &PostHandler{
		notifier:          notifier{users: userRepo, companies: companyRepo, notifications: notificationRepo},
		postRepository:    postRepo,
		companyRepository: companyRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/share", h.SharePost)
	g.PUT("/posts/:id/visible", h.SetPostVisible)
	g.PUT("/posts/:id/feature", h.FeaturePost)
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
	g.POST("/posts/:id/report", h.ReportPost)
}

// CreatePost creates a new post, either as the viewer or on behalf of a
// company the viewer belongs to.
func (h *PostHandler) CreatePost(c echo.Context) error {
	viewerID, _ := getViewer(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	companyID, err := h.resolveCompany(c, viewerID, req.CompanyID)
	if err != nil {
		return err
	}

	mentions, err := parseObjectIDs(req.MentionIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid mention id")
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	post := &models.Post{
		UserID:     viewerID,
		Body:       req.Body,
		MediaURL:   req.MediaURL,
		Audience:   models.Audience(req.Audience),
		Categories: req.Categories,
		Visible:    visible,
		MentionIDs: mentions,
	}
	if err := h.postRepository.Create(c.Request().Context(), post, companyID); err != nil {
		return httpError(err)
	}

	h.notify(c.Request().Context(), viewerID, models.NotificationTaggedInPost, mentions, models.NotificationData{PostID: &post.ID})

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID, gated by the viewer's accreditation. The
// viewer's own posts bypass the gate.
func (h *PostHandler) GetPost(c echo.Context) error {
	viewerID, accreditation := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.postRepository.FindByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if post.UserID != viewerID {
		requires, ok := post.Audience.Requires()
		if !ok || models.CompareAccreditation(accreditation, requires) < 0 {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
	}
	return c.JSON(http.StatusOK, post)
}

// UpdatePost updates an existing post owned by the viewer
func (h *PostHandler) UpdatePost(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.Edit(c.Request().Context(), id, viewerID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost soft-deletes a post. The viewer may delete their own posts and
// posts of any company they belong to.
func (h *PostHandler) DeletePost(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	companyIDs, err := h.companyRepository.FindMemberCompanyIDs(c.Request().Context(), viewerID)
	if err != nil {
		return httpError(err)
	}
	if err := h.postRepository.Delete(c.Request().Context(), id, viewerID, companyIDs); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SharePost creates a new post referencing an existing one and notifies the
// original author
func (h *PostHandler) SharePost(c echo.Context) error {
	viewerID, _ := getViewer(c)
	originalID, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	var req models.SharePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	companyID, err := h.resolveCompany(c, viewerID, req.CompanyID)
	if err != nil {
		return err
	}

	share := &models.Post{
		UserID:  viewerID,
		Body:    req.Body,
		Visible: true,
	}
	if err := h.postRepository.Share(c.Request().Context(), originalID, share, companyID); err != nil {
		return httpError(err)
	}

	if original, err := h.postRepository.FindByID(c.Request().Context(), originalID); err == nil {
		recipients := h.postOwners(c.Request().Context(), original)
		h.notify(c.Request().Context(), viewerID, models.NotificationSharePost, recipients, models.NotificationData{PostID: &originalID})
	}

	return c.JSON(http.StatusCreated, share)
}

// SetPostVisible toggles a post's visibility
func (h *PostHandler) SetPostVisible(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	var req models.SetPostVisibleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.postRepository.SetVisible(c.Request().Context(), id, viewerID, *req.Visible); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FeaturePost toggles the featured overlay on a post
func (h *PostHandler) FeaturePost(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	var req models.FeaturePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.postRepository.Feature(c.Request().Context(), id, viewerID, *req.Feature); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LikePost records a like and notifies the post's owner
func (h *PostHandler) LikePost(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.postRepository.Like(c.Request().Context(), id, viewerID)
	if err != nil {
		return httpError(err)
	}

	recipients := h.postOwners(c.Request().Context(), post)
	h.notify(c.Request().Context(), viewerID, models.NotificationLikePost, recipients, models.NotificationData{PostID: &post.ID})

	return c.JSON(http.StatusOK, post)
}

// UnlikePost removes a like
func (h *PostHandler) UnlikePost(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.postRepository.Unlike(c.Request().Context(), id, viewerID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// ReportPost files a report against a post. Reporting twice is rejected.
func (h *PostHandler) ReportPost(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	if err := h.postRepository.LogReport(c.Request().Context(), id, viewerID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// resolveCompany validates the optional company id on a write request and
// checks the viewer is a member.
func (h *PostHandler) resolveCompany(c echo.Context, viewerID primitive.ObjectID, raw string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	companyID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid company id")
	}
	member, err := h.companyRepository.IsMember(c.Request().Context(), companyID, viewerID)
	if err != nil {
		return nil, httpError(err)
	}
	if !member {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Not a member of this company")
	}
	return &companyID, nil
}

