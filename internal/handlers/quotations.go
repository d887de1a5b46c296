package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ukydev/fleetquote/internal/db"
	"github.com/ukydev/fleetquote/internal/middleware"
	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/quotation"
	"github.com/ukydev/fleetquote/internal/response"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

const maxPageSize = 200

// QuotationService is implemented by quotation.Service.
type QuotationService interface {
	Estimate(ctx context.Context, tenantID string, req models.QuoteRequest) (*quotation.Estimate, error)
	Create(ctx context.Context, tenantID, userID string, req models.QuoteRequest) (*models.Quotation, error)
	Get(ctx context.Context, tenantID, id string) (*models.Quotation, error)
	List(ctx context.Context, tenantID string, filter db.QuotationFilter) ([]models.Quotation, error)
}

// QuotationHandler prices and stores quotations.
type QuotationHandler struct {
	service QuotationService
}

func NewQuotationHandler(service QuotationService) *QuotationHandler {
	return &QuotationHandler{service: service}
}

// Estimate prices a trip without storing it.
func (h *QuotationHandler) Estimate(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid quote request", err)
		return
	}

	est, err := h.service.Estimate(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		quoteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", est)
}

func (h *QuotationHandler) Create(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid quote request", err)
		return
	}

	claims, _ := middleware.GetClaims(c)
	q, err := h.service.Create(c.Request.Context(), claims.TenantID, claims.UserID, req)
	if err != nil {
		quoteError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Quotation created", q)
}

func (h *QuotationHandler) Get(c *gin.Context) {
	q, err := h.service.Get(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", q)
}

// List supports ?vehicle_id=, ?status=, ?limit= and ?skip=.
func (h *QuotationHandler) List(c *gin.Context) {
	filter := db.QuotationFilter{
		VehicleID: c.Query("vehicle_id"),
		Status:    c.Query("status"),
	}
	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		response.FromError(c, err)
		return
	}
	if filter.Skip, err = queryInt(c, "skip"); err != nil {
		response.FromError(c, err)
		return
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	list, err := h.service.List(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", list)
}

func queryInt(c *gin.Context, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, xerrors.Invalid(key, "must be a non-negative integer")
	}
	return n, nil
}

func quoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quotation.ErrVehicleUnavailable):
		response.Error(c, http.StatusConflict, "Vehicle is not available", err)
	case errors.Is(err, quotation.ErrRouteUnresolved):
		response.Error(c, http.StatusBadGateway, "Route could not be resolved", err)
	default:
		response.FromError(c, err)
	}
}
