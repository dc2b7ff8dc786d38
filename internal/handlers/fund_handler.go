package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/irisvest/backend/internal/repositories"
)

// FundHandler handles fund-related HTTP requests. Every read runs through
// the viewer's accreditation tier.
type FundHandler struct {
	fundRepository repositories.FundRepository
}

// NewFundHandler creates a new FundHandler
func NewFundHandler(fundRepo repositories.FundRepository) *FundHandler {
	return &FundHandler{fundRepository: fundRepo}
}

// RegisterFundRoutes registers fund-related routes
func (h *FundHandler) RegisterFundRoutes(g *echo.Group) {
	g.GET("/funds", h.ListFunds)
	g.GET("/funds/:id", h.GetFund)
}

// ListFunds returns every fund the viewer's accreditation tier may see
func (h *FundHandler) ListFunds(c echo.Context) error {
	_, accreditation := getViewer(c)
	funds, err := h.fundRepository.ListForViewer(c.Request().Context(), accreditation)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, funds)
}

// GetFund retrieves a fund, gated by the viewer's accreditation
func (h *FundHandler) GetFund(c echo.Context) error {
	_, accreditation := getViewer(c)
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	fund, err := h.fundRepository.FindForViewer(c.Request().Context(), id, accreditation)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fund)
}
