package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/irisvest/backend/internal/repositories"
)

// HealthHandler reports service liveness plus a cheap datastore probe.
type HealthHandler struct {
	postRepository repositories.PostRepository
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(postRepo repositories.PostRepository) *HealthHandler {
	return &HealthHandler{postRepository: postRepo}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	count, err := h.postRepository.Count(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status": "degraded",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "irisvest-api",
		"posts":   count,
	})
}
