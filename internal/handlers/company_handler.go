package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/repositories"
)

// CompanyHandler handles company-related HTTP requests
type CompanyHandler struct {
	companyRepository repositories.CompanyRepository
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyRepo repositories.CompanyRepository) *CompanyHandler {
	return &CompanyHandler{companyRepository: companyRepo}
}

// RegisterCompanyRoutes registers company-related routes
func (h *CompanyHandler) RegisterCompanyRoutes(g *echo.Group) {
	g.POST("/companies", h.CreateCompany)
	g.GET("/companies/:id", h.GetCompany)
}

// CreateCompany creates a new company with the viewer as its first member
func (h *CompanyHandler) CreateCompany(c echo.Context) error {
	viewerID, _ := getViewer(c)

	var req models.CreateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	company := &models.Company{
		Name:      req.Name,
		About:     req.About,
		MemberIDs: []primitive.ObjectID{viewerID},
	}
	if err := h.companyRepository.Create(c.Request().Context(), company); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, company)
}

// GetCompany retrieves a company by ID
func (h *CompanyHandler) GetCompany(c echo.Context) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return err
	}
	company, err := h.companyRepository.FindByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, company)
}
