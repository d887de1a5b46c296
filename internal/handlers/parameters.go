package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ukydev/fleetquote/internal/middleware"
	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/response"
)

// ParametersService is implemented by parameters.Service.
type ParametersService interface {
	Active(ctx context.Context, tenantID string) (*models.SystemParameters, error)
	Get(ctx context.Context, tenantID, id string) (*models.SystemParameters, error)
	List(ctx context.Context, tenantID string) ([]models.SystemParameters, error)
	Create(ctx context.Context, tenantID string, p *models.SystemParameters) (*models.SystemParameters, error)
	Update(ctx context.Context, tenantID, id string, p *models.SystemParameters) (*models.SystemParameters, error)
	Activate(ctx context.Context, tenantID, id string) (*models.SystemParameters, error)
}

// ParametersHandler serves the tenant's rate sheets.
type ParametersHandler struct {
	service ParametersService
}

func NewParametersHandler(service ParametersService) *ParametersHandler {
	return &ParametersHandler{service: service}
}

func (h *ParametersHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if list == nil {
		list = []models.SystemParameters{}
	}
	response.Success(c, http.StatusOK, "", list)
}

func (h *ParametersHandler) Active(c *gin.Context) {
	p, err := h.service.Active(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", p)
}

func (h *ParametersHandler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", p)
}

func (h *ParametersHandler) Create(c *gin.Context) {
	var p models.SystemParameters
	if err := c.ShouldBindJSON(&p); err != nil {
		response.BadRequest(c, "Invalid parameters", err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), middleware.TenantID(c), &p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Parameters created", created)
}

func (h *ParametersHandler) Update(c *gin.Context) {
	var p models.SystemParameters
	if err := c.ShouldBindJSON(&p); err != nil {
		response.BadRequest(c, "Invalid parameters", err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), middleware.TenantID(c), c.Param("id"), &p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Parameters updated", updated)
}

func (h *ParametersHandler) Activate(c *gin.Context) {
	p, err := h.service.Activate(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Parameters activated", p)
}
