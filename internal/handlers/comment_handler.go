package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	notifier
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, companyRepo repositories.CompanyRepository, notificationRepo repositories.NotificationRepository) *CommentHandler {
	return &CommentHandler{
		notifier:          notifier{users: userRepo, companies: companyRepo, notifications: notificationRepo},
		commentRepository: commentRepo,
		postRepository:    postRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetCommentsByPost)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/like", h.LikeComment)
	g.DELETE("/comments/:id/like", h.UnlikeComment)
}

// CreateComment creates a new comment on a post and notifies the post's
// owner plus anyone mentioned
func (h *CommentHandler) CreateComment(c echo.Context) error {
	viewerID, _ := getViewer(c)

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post id")
	}
	var parentID *primitive.ObjectID
	if req.CommentID != "" {
		id, err := primitive.ObjectIDFromHex(req.CommentID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment id")
		}
		parentID = &id
	}
	mentions, err := parseObjectIDs(req.MentionIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid mention id")
	}

	comment := &models.Comment{
		PostID:     postID,
		UserID:     viewerID,
		CommentID:  parentID,
		Body:       req.Body,
		MentionIDs: mentions,
	}
	if err := h.commentRepository.Create(c.Request().Context(), comment); err != nil {
		return httpError(err)
	}

	data := models.NotificationData{PostID: &postID, CommentID: &comment.ID}
	if post, err := h.postRepository.FindByID(c.Request().Context(), postID); err == nil {
		h.notify(c.Request().Context(), viewerID, models.NotificationCommentPost, h.postOwners(c.Request().Context(), post), data)
	}
	h.notify(c.Request().Context(), viewerID, models.NotificationTaggedInComment, mentions, data)

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPost retrieves a post's comments in chronological order
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.postRepository.FindByID(c.Request().Context(), postID); err != nil {
		return httpError(err)
	}
	comments, err := h.commentRepository.FindByPost(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// UpdateComment updates a comment owned by the viewer
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.commentRepository.Edit(c.Request().Context(), id, viewerID, req.Body)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment soft-deletes a comment owned by the viewer
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	if err := h.commentRepository.Delete(c.Request().Context(), id, viewerID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LikeComment records a like on a comment
func (h *CommentHandler) LikeComment(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	if err := h.commentRepository.Like(c.Request().Context(), id, viewerID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnlikeComment removes a like from a comment
func (h *CommentHandler) UnlikeComment(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	if err := h.commentRepository.Unlike(c.Request().Context(), id, viewerID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

