package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleetquote/internal/costs"
	"github.com/ukydev/fleetquote/internal/units"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

const (
	VehicleStatusActive      = "active"
	VehicleStatusInactive    = "inactive"
	VehicleStatusMaintenance = "maintenance"
)

// Vehicle represents a fleet vehicle available for quotes.
type Vehicle struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TenantID           string               `bson:"tenant_id" json:"tenant_id"`
	Name               string               `bson:"name" json:"name"`
	Make               string               `bson:"make" json:"make"`
	Model              string               `bson:"model" json:"model"`
	Year               int                  `bson:"year" json:"year"`
	Plate              string               `bson:"plate" json:"plate"`
	PassengerCapacity  int                  `bson:"passenger_capacity" json:"passenger_capacity"`
	FuelCapacity       float64              `bson:"fuel_capacity" json:"fuel_capacity"` // gallons
	FuelEfficiency     float64              `bson:"fuel_efficiency" json:"fuel_efficiency"`
	FuelEfficiencyUnit units.EfficiencyUnit `bson:"fuel_efficiency_unit" json:"fuel_efficiency_unit"`
	CostPerDistance    float64              `bson:"cost_per_distance" json:"cost_per_distance"`
	CostPerDay         float64              `bson:"cost_per_day" json:"cost_per_day"`
	DistanceUnit       units.DistanceUnit   `bson:"distance_unit" json:"distance_unit"`
	Status             string               `bson:"status" json:"status"` // "active", "inactive" or "maintenance"
	CreatedAt          time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time            `bson:"updated_at" json:"updated_at"`
}

// Normalize fills defaults and canonicalizes unit spellings.
func (v *Vehicle) Normalize() {
	v.Name = strings.TrimSpace(v.Name)
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	if v.Status == "" {
		v.Status = VehicleStatusActive
	}
	if v.DistanceUnit == "" {
		v.DistanceUnit = units.Kilometer
	} else if u, err := units.ParseDistanceUnit(string(v.DistanceUnit)); err == nil {
		v.DistanceUnit = u
	}
	if u, err := units.ParseEfficiencyUnit(string(v.FuelEfficiencyUnit)); err == nil {
		v.FuelEfficiencyUnit = u
	}
}

// Validate checks the vehicle can be stored and priced.
func (v *Vehicle) Validate() error {
	if v.Name == "" {
		return xerrors.Invalid("name", "is required")
	}
	switch v.Status {
	case VehicleStatusActive, VehicleStatusInactive, VehicleStatusMaintenance:
	default:
		return xerrors.Invalid("status", "must be active, inactive or maintenance")
	}
	return costs.ValidateVehicle(v.Profile())
}

// IsAvailable reports whether the vehicle can be quoted.
func (v *Vehicle) IsAvailable() bool {
	return v.Status == VehicleStatusActive
}

// Profile returns the figures the cost engine works with.
func (v *Vehicle) Profile() costs.Vehicle {
	return costs.Vehicle{
		PassengerCapacity:  v.PassengerCapacity,
		FuelCapacity:       v.FuelCapacity,
		FuelEfficiency:     v.FuelEfficiency,
		FuelEfficiencyUnit: v.FuelEfficiencyUnit,
		CostPerDistance:    v.CostPerDistance,
		CostPerDay:         v.CostPerDay,
		DistanceUnit:       v.DistanceUnit,
	}
}
