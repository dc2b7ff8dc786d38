package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to users: profiles, the follow
// graph and the viewer's visibility controls.
type UserHandler struct {
	notifier
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, companyRepo repositories.CompanyRepository, notificationRepo repositories.NotificationRepository) *UserHandler {
	return &UserHandler{
		notifier:       notifier{users: userRepo, companies: companyRepo, notifications: notificationRepo},
		userRepository: userRepo,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetProfile)
	g.DELETE("/users/me", h.DeleteUser)
	g.GET("/users/:id", h.GetUser)
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.POST("/companies/:id/follow", h.FollowCompany)
	g.DELETE("/companies/:id/follow", h.UnfollowCompany)
	g.POST("/posts/:id/hide", h.HidePost)
	g.POST("/users/:id/hide", h.HideUser)
	g.POST("/posts/:id/mute", h.MutePost)
	g.DELETE("/posts/:id/mute", h.UnmutePost)
	g.POST("/users/me/devices", h.RegisterDevice)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	viewerID, _ := getViewer(c)
	user, err := h.userRepository.FindByID(c.Request().Context(), viewerID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser retrieves another user's profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userRepository.FindByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser soft-deletes the authenticated user's account
func (h *UserHandler) DeleteUser(c echo.Context) error {
	viewerID, _ := getViewer(c)
	if err := h.userRepository.Delete(c.Request().Context(), viewerID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FollowUser follows another user and notifies them
func (h *UserHandler) FollowUser(c echo.Context) error {
	viewerID, _ := getViewer(c)
	targetID, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	if targetID == viewerID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	if err := h.userRepository.Follow(c.Request().Context(), viewerID, targetID); err != nil {
		return httpError(err)
	}

	h.notify(c.Request().Context(), viewerID, models.NotificationFollowedByUser,
		[]primitive.ObjectID{targetID}, models.NotificationData{UserID: &viewerID})
	return c.NoContent(http.StatusNoContent)
}

// UnfollowUser removes a follow edge
func (h *UserHandler) UnfollowUser(c echo.Context) error {
	viewerID, _ := getViewer(c)
	targetID, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.userRepository.Unfollow(c.Request().Context(), viewerID, targetID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FollowCompany follows a company and notifies its members
func (h *UserHandler) FollowCompany(c echo.Context) error {
	viewerID, _ := getViewer(c)
	companyID, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}

	if err := h.userRepository.FollowCompany(c.Request().Context(), viewerID, companyID); err != nil {
		return httpError(err)
	}

	if company, err := h.companies.FindByID(c.Request().Context(), companyID); err == nil {
		h.notify(c.Request().Context(), viewerID, models.NotificationFollowedByCompany,
			company.MemberIDs, models.NotificationData{CompanyID: &companyID})
	}
	return c.NoContent(http.StatusNoContent)
}

// UnfollowCompany removes a company follow edge
func (h *UserHandler) UnfollowCompany(c echo.Context) error {
	viewerID, _ := getViewer(c)
	companyID, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.userRepository.UnfollowCompany(c.Request().Context(), viewerID, companyID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HidePost removes a post from the viewer's feed
func (h *UserHandler) HidePost(c echo.Context) error {
	viewerID, _ := getViewer(c)
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.userRepository.HidePost(c.Request().Context(), viewerID, postID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HideUser removes an author from the viewer's feed
func (h *UserHandler) HideUser(c echo.Context) error {
	viewerID, _ := getViewer(c)
	hiddenID, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.userRepository.HideUser(c.Request().Context(), viewerID, hiddenID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MutePost stops notifications for a post without hiding it
func (h *UserHandler) MutePost(c echo.Context) error {
	viewerID, _ := getViewer(c)
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.userRepository.MutePost(c.Request().Context(), viewerID, postID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnmutePost re-enables notifications for a post
func (h *UserHandler) UnmutePost(c echo.Context) error {
	viewerID, _ := getViewer(c)
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.userRepository.UnmutePost(c.Request().Context(), viewerID, postID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RegisterDevice stores a push token for the viewer
func (h *UserHandler) RegisterDevice(c echo.Context) error {
	viewerID, _ := getViewer(c)

	var req models.RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.userRepository.RegisterDevice(c.Request().Context(), viewerID, req.Token); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
