package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/irisvest/backend/internal/repositories"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notificationRepo}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/badge", h.GetBadge)
	g.PUT("/notifications/read", h.MarkAllRead)
	g.PUT("/notifications/:id/read", h.MarkRead)
	g.PUT("/notifications/seen", h.MarkAllSeen)
	g.PUT("/notifications/:id/seen", h.MarkSeen)
}

// GetNotifications returns the viewer's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	viewerID, _ := getViewer(c)

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	notifications, err := h.notificationRepository.FindByRecipient(c.Request().Context(), viewerID, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// GetBadge returns the viewer's unread badge counter
func (h *NotificationHandler) GetBadge(c echo.Context) error {
	viewerID, _ := getViewer(c)
	badge, err := h.notificationRepository.Badge(c.Request().Context(), viewerID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"badge": badge})
}

// MarkRead marks one notification as read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.notificationRepository.Read(c.Request().Context(), viewerID, &id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead marks every unread notification as read
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	viewerID, _ := getViewer(c)
	if err := h.notificationRepository.Read(c.Request().Context(), viewerID, nil); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkSeen marks one notification as delivered without reading it
func (h *NotificationHandler) MarkSeen(c echo.Context) error {
	viewerID, _ := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.notificationRepository.Seen(c.Request().Context(), viewerID, &id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllSeen marks every new notification as delivered
func (h *NotificationHandler) MarkAllSeen(c echo.Context) error {
	viewerID, _ := getViewer(c)
	if err := h.notificationRepository.Seen(c.Request().Context(), viewerID, nil); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
