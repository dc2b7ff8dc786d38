package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/apperr"
	"github.com/irisvest/backend/internal/models"
)

// getViewer returns the authenticated viewer's id and accreditation as set
// by the JWT middleware.
func getViewer(c echo.Context) (primitive.ObjectID, models.Accreditation) {
	id, _ := c.Get("viewerID").(primitive.ObjectID)
	accreditation, ok := c.Get("accreditation").(models.Accreditation)
	if !ok {
		accreditation = models.AccreditationNone
	}
	return id, accreditation
}

func parseObjectID(c echo.Context, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+param)
	}
	return id, nil
}

// httpError maps data-layer error kinds onto HTTP statuses. Internal errors
// keep their detail out of the response body.
func httpError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrUnprocessable):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, apperr.ErrBadRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}
