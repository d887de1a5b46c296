package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleetquote/internal/db"
	"github.com/ukydev/fleetquote/internal/middleware"
	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/response"
)

// VehicleHandler serves the tenant's fleet.
type VehicleHandler struct {
	vehicles db.VehicleCollection
	logger   log.FieldLogger
}

func NewVehicleHandler(vehicles db.VehicleCollection, logger log.FieldLogger) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, logger: logger}
}

// List returns the fleet, optionally filtered by ?status=.
func (h *VehicleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	filter := db.VehicleFilter{Status: c.Query("status")}

	cursor, err := h.vehicles.FindVehicles(ctx, middleware.TenantID(c), filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer cursor.Close(ctx)

	vehicles := []models.Vehicle{}
	if err := cursor.All(ctx, &vehicles); err != nil {
		h.logger.WithError(err).Error("Failed to decode vehicles")
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", vehicles)
}

func (h *VehicleHandler) Get(c *gin.Context) {
	v, err := h.vehicles.FindVehicleByID(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", v)
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var v models.Vehicle
	if err := c.ShouldBindJSON(&v); err != nil {
		response.BadRequest(c, "Invalid vehicle", err)
		return
	}
	v.TenantID = middleware.TenantID(c)
	v.Normalize()
	if err := v.Validate(); err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.vehicles.InsertVehicle(c.Request.Context(), &v); err != nil {
		response.FromError(c, err)
		return
	}

	h.logger.WithFields(log.Fields{
		"tenant_id":  v.TenantID,
		"vehicle_id": v.ID.Hex(),
		"name":       v.Name,
	}).Info("Vehicle created")
	response.Success(c, http.StatusCreated, "Vehicle created", v)
}

func (h *VehicleHandler) Update(c *gin.Context) {
	var v models.Vehicle
	if err := c.ShouldBindJSON(&v); err != nil {
		response.BadRequest(c, "Invalid vehicle", err)
		return
	}
	tenantID := middleware.TenantID(c)
	v.TenantID = tenantID
	v.Normalize()
	if err := v.Validate(); err != nil {
		response.FromError(c, err)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.vehicles.UpdateVehicle(ctx, tenantID, id, v); err != nil {
		response.FromError(c, err)
		return
	}

	updated, err := h.vehicles.FindVehicleByID(ctx, tenantID, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Vehicle updated", updated)
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	tenantID := middleware.TenantID(c)
	id := c.Param("id")
	if err := h.vehicles.DeleteVehicle(c.Request.Context(), tenantID, id); err != nil {
		response.FromError(c, err)
		return
	}

	h.logger.WithFields(log.Fields{"tenant_id": tenantID, "vehicle_id": id}).Info("Vehicle deleted")
	response.Success(c, http.StatusOK, "Vehicle deleted", nil)
}
